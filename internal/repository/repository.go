package repository

import (
	"context"

	"github.com/SeakMengs/AutoSign/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB             *gorm.DB
	Document       *DocumentRepository
	File           *FileRepository
	Field          *FieldRepository
	SigningSession *SigningSessionRepository
	ActivityLog    *ActivityLogRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger) *baseRepository {
	return &baseRepository{db: db, logger: logger}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger) *Repository {
	br := newBaseRepository(db, logger)

	return &Repository{
		DB:             db,
		Document:       &DocumentRepository{baseRepository: br},
		File:           &FileRepository{baseRepository: br},
		Field:          &FieldRepository{baseRepository: br},
		SigningSession: &SigningSessionRepository{baseRepository: br},
		ActivityLog:    &ActivityLogRepository{baseRepository: br},
	}
}

// Runs fn in a transaction, or a savepoint when db is already one.
// Docs: https://gorm.io/docs/transactions.html
func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Debugf("withTx Transaction rolled back: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}

// Serialises layout replacement and session issuance of one document.
func (b baseRepository) lockDocument(ctx context.Context, tx *gorm.DB, documentID string) (*model.Document, error) {
	var document model.Document
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", documentID).
		First(&document).Error; err != nil {
		return nil, err
	}

	return &document, nil
}
