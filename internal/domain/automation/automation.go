// Package automation holds user-defined content-generation rules.
package automation

import (
	"context"
	"time"
)

// Automation maps an LLM prompt to a target social platform. Each completed
// meeting produces one generated post per automation the user owns.
type Automation struct {
	ID        uint
	UserID    string
	Name      string
	Platform  string
	Prompt    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines storage operations for automations.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*Automation, error)
	FindByID(ctx context.Context, id uint, userID string) (*Automation, error)
	Save(ctx context.Context, a *Automation) (*Automation, error)
	Delete(ctx context.Context, id uint, userID string) error
}
