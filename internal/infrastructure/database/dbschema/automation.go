package dbschema

import (
	"meetscribe-server/internal/domain/automation"
	"meetscribe-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Automation{})
}

// Automation represents the database schema for content automations
type Automation struct {
	BaseModel
	UserID   string `gorm:"type:varchar(255);not null;index:ix_automations_user"`
	Name     string `gorm:"type:varchar(255);not null"`
	Platform string `gorm:"type:varchar(50);not null"`
	Prompt   string `gorm:"type:text;not null"`
}

// NewSchemaAutomation creates a database schema from a domain automation
func NewSchemaAutomation(a *automation.Automation) *Automation {
	return &Automation{
		BaseModel: BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		UserID:   a.UserID,
		Name:     a.Name,
		Platform: a.Platform,
		Prompt:   a.Prompt,
	}
}

// EtoD converts database schema to domain automation (Entity to Domain)
func (a *Automation) EtoD() *automation.Automation {
	return &automation.Automation{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Platform:  a.Platform,
		Prompt:    a.Prompt,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
