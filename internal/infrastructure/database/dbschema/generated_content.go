package dbschema

import (
	"meetscribe-server/internal/domain/content"
	"meetscribe-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(GeneratedContent{})
}

// GeneratedContent represents the database schema for generated artifacts.
// Uniqueness is enforced by two partial indexes created in the SQL
// migrations: (meeting_id, type) where automation_id is null, and
// (meeting_id, automation_id) otherwise.
type GeneratedContent struct {
	BaseModel
	MeetingID    uint    `gorm:"not null;index"`
	Meeting      Meeting `gorm:"foreignKey:MeetingID"`
	AutomationID *uint
	Type         string `gorm:"type:varchar(100);not null"`
	Content      string `gorm:"type:text;not null"`
}

// NewSchemaGeneratedContent creates a database schema from a domain artifact
func NewSchemaGeneratedContent(gc *content.GeneratedContent) *GeneratedContent {
	return &GeneratedContent{
		BaseModel: BaseModel{
			ID:        gc.ID,
			CreatedAt: gc.CreatedAt,
			UpdatedAt: gc.UpdatedAt,
		},
		MeetingID:    gc.MeetingID,
		AutomationID: gc.AutomationID,
		Type:         gc.Type,
		Content:      gc.Content,
	}
}

// EtoD converts database schema to domain artifact (Entity to Domain)
func (gc *GeneratedContent) EtoD() *content.GeneratedContent {
	return &content.GeneratedContent{
		ID:           gc.ID,
		MeetingID:    gc.MeetingID,
		AutomationID: gc.AutomationID,
		Type:         gc.Type,
		Content:      gc.Content,
		CreatedAt:    gc.CreatedAt,
		UpdatedAt:    gc.UpdatedAt,
	}
}
