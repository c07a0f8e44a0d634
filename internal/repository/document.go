package repository

import (
	"context"

	constant "github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	*baseRepository
}

// Create stores the uploaded pdf row and the document pointing at it.
func (dr DocumentRepository) Create(ctx context.Context, tx *gorm.DB, document *model.Document) (*model.Document, error) {
	dr.logger.Debugf("Create document with title: %s, owner: %s \n", document.Title, document.OwnerID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	err := dr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := (FileRepository{dr.baseRepository}).Create(ctx, tx, &document.PdfFile); err != nil {
			return err
		}

		document.PdfFileID = document.PdfFile.ID
		return tx.Omit("PdfFile").Create(document).Error
	})
	if err != nil {
		return document, err
	}

	return document, nil
}

func (dr DocumentRepository) GetByID(ctx context.Context, tx *gorm.DB, documentID string) (*model.Document, error) {
	dr.logger.Debugf("Get document by id: %s \n", documentID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var document model.Document
	if err := db.WithContext(ctx).Model(&model.Document{}).
		Preload("PdfFile").
		Where("id = ?", documentID).
		First(&document).Error; err != nil {
		return nil, err
	}

	return &document, nil
}

// GetForOwner behaves like GetByID but reports documents of other agents as not found.
func (dr DocumentRepository) GetForOwner(ctx context.Context, tx *gorm.DB, documentID, ownerID string) (*model.Document, error) {
	dr.logger.Debugf("Get document by id: %s for owner: %s \n", documentID, ownerID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var document model.Document
	if err := db.WithContext(ctx).Model(&model.Document{}).
		Preload("PdfFile").
		Where("id = ? AND owner_id = ?", documentID, ownerID).
		First(&document).Error; err != nil {
		return nil, err
	}

	return &document, nil
}

func (dr DocumentRepository) ListForOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]model.Document, error) {
	dr.logger.Debugf("List documents for owner: %s \n", ownerID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var documents []model.Document
	if err := db.WithContext(ctx).Model(&model.Document{}).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&documents).Error; err != nil {
		return nil, err
	}

	return documents, nil
}
