package repository

import (
	"context"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	constant "github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"gorm.io/gorm"
)

type FieldRepository struct {
	*baseRepository
}

func (fr FieldRepository) GetFields(ctx context.Context, tx *gorm.DB, documentID string) ([]model.Field, error) {
	fr.logger.Debugf("Get fields by document id: %s", documentID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var fields []model.Field
	if err := db.WithContext(ctx).Model(&model.Field{}).
		Where("document_id = ?", documentID).
		Order("sort_order asc").
		Find(&fields).Error; err != nil {
		return nil, err
	}

	return fields, nil
}

// ReplaceFields swaps the whole layout of a document in one transaction.
// Fields must already be validated. Once sessions exist the layout is locked.
func (fr FieldRepository) ReplaceFields(ctx context.Context, tx *gorm.DB, documentID string, fields []model.Field) ([]model.Field, error) {
	fr.logger.Debugf("Replace fields of document: %s with %d fields", documentID, len(fields))

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	err := fr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := fr.lockDocument(ctx, tx, documentID); err != nil {
			return err
		}

		var sessionCount int64
		if err := tx.Model(&model.SigningSession{}).
			Where("document_id = ?", documentID).
			Count(&sessionCount).Error; err != nil {
			return err
		}
		if sessionCount > 0 {
			return apperror.ErrLayoutLocked
		}

		if err := rejectForeignFieldIDs(tx, documentID, fields); err != nil {
			return err
		}

		if err := tx.Where("document_id = ?", documentID).Delete(&model.Field{}).Error; err != nil {
			return err
		}

		if len(fields) == 0 {
			return nil
		}

		for i := range fields {
			fields[i].DocumentID = documentID
			fields[i].SortOrder = i
		}

		return tx.Omit("Document").Create(&fields).Error
	})
	if err != nil {
		fr.logger.Errorf("Failed to replace fields of document: %s, error: %v", documentID, err)
		return nil, err
	}

	return fields, nil
}

// Field ids are global primary keys, an id already placed on another
// document cannot be reused.
func rejectForeignFieldIDs(tx *gorm.DB, documentID string, fields []model.Field) error {
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.ID != "" {
			ids = append(ids, f.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var taken []string
	if err := tx.Model(&model.Field{}).
		Where("id IN ? AND document_id <> ?", ids, documentID).
		Pluck("id", &taken).Error; err != nil {
		return err
	}
	if len(taken) > 0 {
		return apperror.WithDetails(apperror.ErrValidation, "field id already used by another document", taken)
	}

	return nil
}
