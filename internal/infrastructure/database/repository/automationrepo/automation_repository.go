package automationrepo

import (
	"context"

	"gorm.io/gorm"

	"meetscribe-server/internal/domain/automation"
	"meetscribe-server/internal/infrastructure/database/dbschema"
	"meetscribe-server/internal/utils/platformerrors"
)

type AutomationGormRepository struct {
	db *gorm.DB
}

var _ automation.Repository = (*AutomationGormRepository)(nil)

func NewAutomationGormRepository(db *gorm.DB) automation.Repository {
	return &AutomationGormRepository{db: db}
}

func (repo *AutomationGormRepository) ListByUser(ctx context.Context, userID string) ([]*automation.Automation, error) {
	var entities []dbschema.Automation
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list automations",
			err,
			"c8e4a1d9-6f32-4b75-9a0e-3d7b5c2f8e41",
		)
	}

	automations := make([]*automation.Automation, 0, len(entities))
	for i := range entities {
		automations = append(automations, entities[i].EtoD())
	}
	return automations, nil
}

func (repo *AutomationGormRepository) FindByID(ctx context.Context, id uint, userID string) (*automation.Automation, error) {
	var entity dbschema.Automation
	err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
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
			"failed to find automation by ID",
			err,
			"5f1b8d3c-2a67-4e94-b6d1-9c0e4a7f2b58",
		)
	}
	return entity.EtoD(), nil
}

func (repo *AutomationGormRepository) Save(ctx context.Context, a *automation.Automation) (*automation.Automation, error) {
	schemaAutomation := dbschema.NewSchemaAutomation(a)
	if err := repo.db.WithContext(ctx).Save(schemaAutomation).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to save automation",
			err,
			"7d3f6a9b-4e18-4c52-8b0d-1a5c9e3f6d27",
		)
	}
	return schemaAutomation.EtoD(), nil
}

func (repo *AutomationGormRepository) Delete(ctx context.Context, id uint, userID string) error {
	res := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&dbschema.Automation{})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete automation",
			res.Error,
			"0a6e3c8f-9d24-4b71-a5e0-6f2d8b4c1a39",
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"automation not found",
			nil,
			"2b9f5e1a-7c43-4d86-9e2b-0d8a6f3c5e74",
		)
	}
	return nil
}
