package repository

import (
	"context"

	constant "github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	*baseRepository
}

func (alr ActivityLogRepository) Create(ctx context.Context, tx *gorm.DB, log *model.ActivityLog) (*model.ActivityLog, error) {
	alr.logger.Debugf("Create activity log %s for document: %s", log.EventType, log.DocumentID)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.ActivityLog{}).Create(log).Error; err != nil {
		return log, err
	}

	return log, nil
}

func (alr ActivityLogRepository) GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID string) ([]model.ActivityLog, error) {
	alr.logger.Debugf("Get activity logs by document id: %s", documentID)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var logs []model.ActivityLog
	if err := db.WithContext(ctx).Model(&model.ActivityLog{}).
		Where("document_id = ?", documentID).
		Order("timestamp asc").
		Find(&logs).Error; err != nil {
		return logs, err
	}

	return logs, nil
}
