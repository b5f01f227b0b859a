// Package content holds AI-generated artifacts tied to meetings.
package content

import (
	"context"
	"time"
)

// TypeEmail is the fixed type of the follow-up email artifact.
const TypeEmail = "email"

// SocialPostType builds the artifact type for a social platform.
func SocialPostType(platform string) string {
	return "social_post_" + platform
}

// GeneratedContent is one AI output artifact. Fixed-type rows (the email)
// carry a nil AutomationID; automation rows link back to their rule.
type GeneratedContent struct {
	ID           uint
	MeetingID    uint
	AutomationID *uint
	Type         string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository defines storage operations for generated content. Both upserts
// replace the prior row for the same key, which makes generation idempotent.
type Repository interface {
	// UpsertByType writes a fixed-type artifact keyed by (meeting_id, type).
	UpsertByType(ctx context.Context, gc *GeneratedContent) error

	// UpsertByAutomation writes an automation artifact keyed by
	// (meeting_id, automation_id).
	UpsertByAutomation(ctx context.Context, gc *GeneratedContent) error

	ListByMeeting(ctx context.Context, meetingID uint) ([]*GeneratedContent, error)
}
