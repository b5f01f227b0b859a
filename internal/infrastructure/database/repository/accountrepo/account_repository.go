package accountrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meetscribe-server/internal/domain/account"
	"meetscribe-server/internal/infrastructure/database/dbschema"
	"meetscribe-server/internal/utils/platformerrors"
)

type AccountGormRepository struct {
	db *gorm.DB
}

var _ account.Repository = (*AccountGormRepository)(nil)

func NewAccountGormRepository(db *gorm.DB) account.Repository {
	return &AccountGormRepository{db: db}
}

func (repo *AccountGormRepository) ListByUserAndProvider(ctx context.Context, userID, provider string) ([]*account.ConnectedAccount, error) {
	var entities []dbschema.ConnectedAccount
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Order("created_at ASC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list accounts by provider",
			err,
			"5d9b3f7a-2c48-4e16-b8d0-7a1f6c9e3b54",
		)
	}

	accounts := make([]*account.ConnectedAccount, 0, len(entities))
	for i := range entities {
		accounts = append(accounts, entities[i].EtoD())
	}
	return accounts, nil
}

func (repo *AccountGormRepository) ListByUser(ctx context.Context, userID string) ([]*account.ConnectedAccount, error) {
	var entities []dbschema.ConnectedAccount
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list accounts",
			err,
			"0f6e2a8d-9b35-4c71-a4e6-3d8b1f5c7a92",
		)
	}

	accounts := make([]*account.ConnectedAccount, 0, len(entities))
	for i := range entities {
		accounts = append(accounts, entities[i].EtoD())
	}
	return accounts, nil
}

func (repo *AccountGormRepository) FindSingle(ctx context.Context, userID, provider string) (*account.ConnectedAccount, error) {
	var entity dbschema.ConnectedAccount
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&entity).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find account",
			err,
			"8c4a1e6f-3d92-4b58-9f0c-2e7d5a8b1c36",
		)
	}
	return entity.EtoD(), nil
}

func (repo *AccountGormRepository) UpsertMultiAccount(ctx context.Context, a *account.ConnectedAccount) (*account.ConnectedAccount, error) {
	schemaAccount := dbschema.NewSchemaConnectedAccount(a)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}, {Name: "provider_user_id"}},
			DoUpdates: clause.Assignments(repo.tokenAssignments(schemaAccount)),
		}).
		Create(schemaAccount).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert account",
			err,
			"3e8f5b2c-7a14-4d96-b3e0-9c6a2d7f4b81",
		)
	}

	return repo.reload(ctx, schemaAccount)
}

func (repo *AccountGormRepository) UpsertSingleAccount(ctx context.Context, a *account.ConnectedAccount) (*account.ConnectedAccount, error) {
	schemaAccount := dbschema.NewSchemaConnectedAccount(a)

	// A reconnect may come from a different provider identity; the row is
	// keyed by (user_id, provider) and adopts the new subject. The partial
	// unique index on that pair guards against concurrent inserts.
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing dbschema.ConnectedAccount
		findErr := tx.
			Where("user_id = ? AND provider = ?", schemaAccount.UserID, schemaAccount.Provider).
			First(&existing).
			Error
		if findErr == gorm.ErrRecordNotFound {
			return tx.Create(schemaAccount).Error
		}
		if findErr != nil {
			return findErr
		}

		assignments := repo.tokenAssignments(schemaAccount)
		assignments["provider_user_id"] = schemaAccount.ProviderUserID
		return tx.
			Model(&dbschema.ConnectedAccount{}).
			Where("id = ?", existing.ID).
			Updates(assignments).
			Error
	})
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert single account",
			err,
			"1b7d4e9a-5f28-4c63-8a1d-6e3f9b2c5d70",
		)
	}

	return repo.reload(ctx, schemaAccount)
}

func (repo *AccountGormRepository) UpdateTokens(ctx context.Context, id uint, tokens account.TokenSet) error {
	res := repo.db.WithContext(ctx).
		Model(&dbschema.ConnectedAccount{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"access_token": tokens.AccessToken,
			"expires_at":   tokens.ExpiresAt,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update account tokens",
			res.Error,
			"f4a8c2e6-0d57-4b39-9e1a-7c5b3f8d2a64",
		)
	}

	// Providers rotate refresh tokens on occasion; keep the old one otherwise.
	if tokens.RefreshToken != nil {
		if err := repo.db.WithContext(ctx).
			Model(&dbschema.ConnectedAccount{}).
			Where("id = ?", id).
			Update("refresh_token", tokens.RefreshToken).Error; err != nil {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to update refresh token",
				err,
				"6c2e9f4b-8a31-4d75-b0c6-1f8d5e3a9b47",
			)
		}
	}
	return nil
}

func (repo *AccountGormRepository) Delete(ctx context.Context, id uint, userID string) error {
	res := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&dbschema.ConnectedAccount{})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete account",
			res.Error,
			"9a5d3b8e-4f26-4c90-a7b1-2e6c8f4d1a53",
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"account not found",
			nil,
			"e7b1f6a3-9c48-4d25-8e0f-5a3d7c2b9e16",
		)
	}
	return nil
}

func (repo *AccountGormRepository) tokenAssignments(schemaAccount *dbschema.ConnectedAccount) map[string]any {
	return map[string]any{
		"provider_user_email": schemaAccount.ProviderUserEmail,
		"access_token":        schemaAccount.AccessToken,
		"refresh_token":       schemaAccount.RefreshToken,
		"expires_at":          schemaAccount.ExpiresAt,
		"updated_at":          gorm.Expr("NOW()"),
	}
}

func (repo *AccountGormRepository) reload(ctx context.Context, schemaAccount *dbschema.ConnectedAccount) (*account.ConnectedAccount, error) {
	var persisted dbschema.ConnectedAccount
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND provider_user_id = ?",
			schemaAccount.UserID, schemaAccount.Provider, schemaAccount.ProviderUserID).
		First(&persisted).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to reload upserted account",
			err,
			"b3f9d5c7-1e84-4a62-9d0b-8c2a6e5f3b48",
		)
	}
	return persisted.EtoD(), nil
}
