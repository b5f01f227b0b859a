package meetingrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meetscribe-server/internal/domain/meeting"
	"meetscribe-server/internal/infrastructure/database/dbschema"
	"meetscribe-server/internal/utils/platformerrors"
)

type MeetingGormRepository struct {
	db *gorm.DB
}

var _ meeting.Repository = (*MeetingGormRepository)(nil)

func NewMeetingGormRepository(db *gorm.DB) meeting.Repository {
	return &MeetingGormRepository{db: db}
}

func (repo *MeetingGormRepository) Upsert(ctx context.Context, m *meeting.Meeting) (*meeting.Meeting, error) {
	schemaMeeting := dbschema.NewSchemaMeeting(m)

	assignments := map[string]any{
		"title":                 schemaMeeting.Title,
		"start_time":            schemaMeeting.StartTime,
		"end_time":              schemaMeeting.EndTime,
		"meeting_url":           schemaMeeting.MeetingURL,
		"platform":              schemaMeeting.Platform,
		"transcription_enabled": schemaMeeting.TranscriptionEnabled,
		"bot_id":                schemaMeeting.BotID,
		"status":                schemaMeeting.Status,
		"attendees":             schemaMeeting.Attendees,
		"updated_at":            gorm.Expr("NOW()"),
	}

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "gcal_event_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(schemaMeeting).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert meeting",
			err,
			"7c1f0b9e-4a52-4f1d-8f3a-2c6d1e9b5a04",
		)
	}

	// Reload to capture ID and timestamps after a conflict update
	var persisted dbschema.Meeting
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND gcal_event_id = ?", schemaMeeting.UserID, schemaMeeting.GcalEventID).
		First(&persisted).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to reload upserted meeting",
			err,
			"e58a2d13-9c74-4b06-a1f2-8d3b6c0e7f19",
		)
	}

	return persisted.EtoD(), nil
}

func (repo *MeetingGormRepository) FindByID(ctx context.Context, id uint, userID string) (*meeting.Meeting, error) {
	var entity dbschema.Meeting
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
			"failed to find meeting by ID",
			err,
			"9b4e6f2a-1d38-47c5-b0e9-5a7c8d2f3e61",
		)
	}
	return entity.EtoD(), nil
}

func (repo *MeetingGormRepository) ListByUser(ctx context.Context, userID string) ([]*meeting.Meeting, error) {
	var entities []dbschema.Meeting
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list meetings",
			err,
			"2f8d4c6b-7e19-4a3d-9c5f-0b1e6a8d4f27",
		)
	}

	meetings := make([]*meeting.Meeting, 0, len(entities))
	for i := range entities {
		meetings = append(meetings, entities[i].EtoD())
	}
	return meetings, nil
}

func (repo *MeetingGormRepository) FindDueForDispatch(ctx context.Context, from, to time.Time) ([]*meeting.Meeting, error) {
	var entities []dbschema.Meeting
	if err := repo.db.WithContext(ctx).
		Where("transcription_enabled = ? AND status = ? AND start_time >= ? AND start_time <= ?",
			true, meeting.StatusPending, from, to).
		Order("start_time ASC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find meetings due for dispatch",
			err,
			"6a3b9e1d-5c47-42f8-8d2a-7e0f4b6c1a93",
		)
	}

	meetings := make([]*meeting.Meeting, 0, len(entities))
	for i := range entities {
		meetings = append(meetings, entities[i].EtoD())
	}
	return meetings, nil
}

func (repo *MeetingGormRepository) FindAwaitingTranscript(ctx context.Context, now time.Time) ([]*meeting.Meeting, error) {
	var entities []dbschema.Meeting
	if err := repo.db.WithContext(ctx).
		Where("status = ? AND bot_id IS NOT NULL AND end_time <= ?", meeting.StatusScheduled, now).
		Order("end_time ASC").
		Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find meetings awaiting transcript",
			err,
			"d1c5e8f3-2b96-4a07-b4d8-9f6a3e7c0b52",
		)
	}

	meetings := make([]*meeting.Meeting, 0, len(entities))
	for i := range entities {
		meetings = append(meetings, entities[i].EtoD())
	}
	return meetings, nil
}

func (repo *MeetingGormRepository) SetBotScheduled(ctx context.Context, id uint, botID string) (bool, error) {
	res := repo.db.WithContext(ctx).
		Model(&dbschema.Meeting{}).
		Where("id = ? AND status = ?", id, meeting.StatusPending).
		Updates(map[string]any{
			"bot_id":     botID,
			"status":     meeting.StatusScheduled,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark meeting scheduled",
			res.Error,
			"4e7a2d9c-8b15-4f63-a0c7-3d6b9e1f5a28",
		)
	}
	return res.RowsAffected > 0, nil
}

func (repo *MeetingGormRepository) CompleteIfScheduled(ctx context.Context, id uint, transcript string) (bool, error) {
	res := repo.db.WithContext(ctx).
		Model(&dbschema.Meeting{}).
		Where("id = ? AND status = ?", id, meeting.StatusScheduled).
		Updates(map[string]any{
			"transcript": transcript,
			"status":     meeting.StatusCompleted,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark meeting completed",
			res.Error,
			"b9f3c6e1-0d84-4a2b-9e5c-6a1d8f4b7c30",
		)
	}
	return res.RowsAffected > 0, nil
}

func (repo *MeetingGormRepository) MarkError(ctx context.Context, id uint, message string) error {
	res := repo.db.WithContext(ctx).
		Model(&dbschema.Meeting{}).
		Where("id = ? AND status IN ?", id, []meeting.Status{meeting.StatusPending, meeting.StatusScheduled}).
		Updates(map[string]any{
			"status":        meeting.StatusError,
			"error_message": message,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark meeting error",
			res.Error,
			"a2d8f5b0-6e39-4c17-8b4a-1f9c3e6d0a75",
		)
	}
	return nil
}
