package contentrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meetscribe-server/internal/domain/content"
	"meetscribe-server/internal/infrastructure/database/dbschema"
	"meetscribe-server/internal/utils/platformerrors"
)

type ContentGormRepository struct {
	db *gorm.DB
}

var _ content.Repository = (*ContentGormRepository)(nil)

func NewContentGormRepository(db *gorm.DB) content.Repository {
	return &ContentGormRepository{db: db}
}

func (repo *ContentGormRepository) UpsertByType(ctx context.Context, gc *content.GeneratedContent) error {
	schemaContent := dbschema.NewSchemaGeneratedContent(gc)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}, {Name: "type"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "automation_id IS NULL"},
			}},
			DoUpdates: clause.Assignments(map[string]any{
				"content":    schemaContent.Content,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(schemaContent).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert generated content by type",
			err,
			"4c8b2f6e-1a95-4d37-b0e8-7f3a5d9c2b61",
		)
	}
	return nil
}

func (repo *ContentGormRepository) UpsertByAutomation(ctx context.Context, gc *content.GeneratedContent) error {
	if gc.AutomationID == nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeValidation,
			"automation id is required",
			nil,
			"8e5d1a3f-6b27-4c94-9d0a-2f7e4b8c5d13",
		)
	}

	schemaContent := dbschema.NewSchemaGeneratedContent(gc)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}, {Name: "automation_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "automation_id IS NOT NULL"},
			}},
			DoUpdates: clause.Assignments(map[string]any{
				"type":       schemaContent.Type,
				"content":    schemaContent.Content,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(schemaContent).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert generated content by automation",
			err,
			"d6a9f3b5-0c81-4e27-a9d4-5b2e8f1c6a70",
		)
	}
	return nil
}

func (repo *ContentGormRepository) ListByMeeting(ctx context.Context, meetingID uint) ([]*content.GeneratedContent, error) {
	var entities []dbschema.GeneratedContent
	if err := repo.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list generated content",
			err,
			"f1c7e4a8-3b62-4d95-8a0f-6d9b2e5c7f34",
		)
	}

	contents := make([]*content.GeneratedContent, 0, len(entities))
	for i := range entities {
		contents = append(contents, entities[i].EtoD())
	}
	return contents, nil
}
