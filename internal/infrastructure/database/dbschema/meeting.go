package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Meeting{})
}

// Meeting represents the database schema for meetings
type Meeting struct {
	BaseModel
	UserID               string           `gorm:"type:varchar(255);not null;uniqueIndex:ux_meetings_user_event"`
	GcalEventID          string           `gorm:"type:varchar(255);not null;uniqueIndex:ux_meetings_user_event"`
	Title                string           `gorm:"type:text;not null;default:'No Title'"`
	StartTime            time.Time        `gorm:"not null;index:ix_meetings_status_start,priority:2"`
	EndTime              time.Time        `gorm:"not null"`
	MeetingURL           *string          `gorm:"type:text"`
	Platform             meeting.Platform `gorm:"type:varchar(20);not null;default:''"`
	TranscriptionEnabled bool             `gorm:"not null;default:false"`
	BotID                *string          `gorm:"type:varchar(255)"`
	Status               meeting.Status   `gorm:"type:varchar(20);not null;default:'pending';index:ix_meetings_status_start,priority:1"`
	Transcript           *string          `gorm:"type:text"`
	ErrorMessage         *string          `gorm:"type:text"`
	Attendees            JSONAttendees    `gorm:"type:jsonb"`
}

// JSONAttendees stores the attendee list as a JSON column.
type JSONAttendees []meeting.Attendee

func (j JSONAttendees) Value() (driver.Value, error) {
	if j == nil {
		return json.Marshal([]meeting.Attendee{})
	}
	return json.Marshal(j)
}

func (j *JSONAttendees) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, j)
}

// NewSchemaMeeting creates a database schema from a domain meeting
func NewSchemaMeeting(m *meeting.Meeting) *Meeting {
	return &Meeting{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		UserID:               m.UserID,
		GcalEventID:          m.GCalEventID,
		Title:                m.Title,
		StartTime:            m.StartTime,
		EndTime:              m.EndTime,
		MeetingURL:           m.MeetingURL,
		Platform:             m.Platform,
		TranscriptionEnabled: m.TranscriptionEnabled,
		BotID:                m.BotID,
		Status:               m.Status,
		Transcript:           m.Transcript,
		ErrorMessage:         m.ErrorMessage,
		Attendees:            JSONAttendees(m.Attendees),
	}
}

// EtoD converts database schema to domain meeting (Entity to Domain)
func (m *Meeting) EtoD() *meeting.Meeting {
	return &meeting.Meeting{
		ID:                   m.ID,
		UserID:               m.UserID,
		GCalEventID:          m.GcalEventID,
		Title:                m.Title,
		StartTime:            m.StartTime,
		EndTime:              m.EndTime,
		MeetingURL:           m.MeetingURL,
		Platform:             m.Platform,
		TranscriptionEnabled: m.TranscriptionEnabled,
		BotID:                m.BotID,
		Status:               m.Status,
		Transcript:           m.Transcript,
		ErrorMessage:         m.ErrorMessage,
		Attendees:            []meeting.Attendee(m.Attendees),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
