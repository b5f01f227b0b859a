package dbschema

import (
	"time"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(ConnectedAccount{})
}

// ConnectedAccount represents the database schema for OAuth-linked accounts
type ConnectedAccount struct {
	BaseModel
	UserID            string     `gorm:"type:varchar(255);not null;uniqueIndex:ux_accounts_user_provider_subject"`
	Provider          string     `gorm:"type:varchar(50);not null;uniqueIndex:ux_accounts_user_provider_subject"`
	ProviderUserID    string     `gorm:"type:varchar(255);not null;uniqueIndex:ux_accounts_user_provider_subject"`
	ProviderUserEmail *string    `gorm:"type:varchar(320)"`
	AccessToken       string     `gorm:"type:text;not null"`
	RefreshToken      *string    `gorm:"type:text"`
	ExpiresAt         *time.Time `gorm:"type:timestamptz"`
}

// NewSchemaConnectedAccount creates a database schema from a domain account
func NewSchemaConnectedAccount(a *account.ConnectedAccount) *ConnectedAccount {
	return &ConnectedAccount{
		BaseModel: BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		UserID:            a.UserID,
		Provider:          a.Provider,
		ProviderUserID:    a.ProviderUserID,
		ProviderUserEmail: a.ProviderUserEmail,
		AccessToken:       a.AccessToken,
		RefreshToken:      a.RefreshToken,
		ExpiresAt:         a.ExpiresAt,
	}
}

// EtoD converts database schema to domain account (Entity to Domain)
func (a *ConnectedAccount) EtoD() *account.ConnectedAccount {
	return &account.ConnectedAccount{
		ID:                a.ID,
		UserID:            a.UserID,
		Provider:          a.Provider,
		ProviderUserID:    a.ProviderUserID,
		ProviderUserEmail: a.ProviderUserEmail,
		AccessToken:       a.AccessToken,
		RefreshToken:      a.RefreshToken,
		ExpiresAt:         a.ExpiresAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
