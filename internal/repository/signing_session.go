package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	constant "github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SigningSessionRepository struct {
	*baseRepository
}

// LayoutCheck runs inside the issuing transaction against the locked layout.
type LayoutCheck func(fields []model.Field) error

// ValuesFunc derives values to write from what is stored for a locked, pending session.
type ValuesFunc func(stored []model.FieldValue) ([]model.FieldValue, error)

func upsertValues(tx *gorm.DB, values []model.FieldValue) error {
	if len(values) == 0 {
		return nil
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "field_id"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_text", "value_bool", "source", "updated_at"}),
	}).Omit("Field", "Session").Create(&values).Error
}

func listValues(tx *gorm.DB, sessionID string) ([]model.FieldValue, error) {
	var values []model.FieldValue
	if err := tx.Model(&model.FieldValue{}).
		Where("session_id = ?", sessionID).
		Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// Locks the session row, fails unless it is still pending.
func lockPendingSession(tx *gorm.DB, sessionID string) (*model.SigningSession, error) {
	var session model.SigningSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}

	switch session.Status {
	case constant.SessionStatusPending:
		return &session, nil
	case constant.SessionStatusRevoked:
		return nil, apperror.ErrInvalidOrExpiredToken
	default:
		return nil, apperror.ErrSessionAlreadySigned
	}
}

// notPendingError tells a revoked or missing session apart from a signed one
// after a compare-and-set matched no row.
func notPendingError(tx *gorm.DB, sessionID string) error {
	var current model.SigningSession
	if err := tx.Select("status").Where("id = ?", sessionID).Take(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrInvalidOrExpiredToken
		}
		return err
	}

	if current.Status == constant.SessionStatusRevoked {
		return apperror.ErrInvalidOrExpiredToken
	}
	return apperror.ErrSessionAlreadySigned
}

// Issue revokes pending sessions of the same recipients and creates the new
// ones, all under the document lock. A recipient who already signed fails the
// whole batch. Returns the revoked sessions.
func (sr SigningSessionRepository) Issue(ctx context.Context, tx *gorm.DB, documentID string, sessions []*model.SigningSession, check LayoutCheck) ([]model.SigningSession, error) {
	sr.logger.Debugf("Issue %d signing sessions for document: %s", len(sessions), documentID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var revoked []model.SigningSession
	err := sr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := sr.lockDocument(ctx, tx, documentID); err != nil {
			return err
		}

		if check != nil {
			var fields []model.Field
			if err := tx.Where("document_id = ?", documentID).Order("sort_order asc").Find(&fields).Error; err != nil {
				return err
			}
			if err := check(fields); err != nil {
				return err
			}
		}

		now := time.Now()
		for _, session := range sessions {
			var existing []model.SigningSession
			if err := tx.Where("document_id = ? AND LOWER(signer_email) = ? AND status <> ?",
				documentID, strings.ToLower(strings.TrimSpace(session.SignerEmail)), constant.SessionStatusRevoked).
				Find(&existing).Error; err != nil {
				return err
			}

			for _, e := range existing {
				if e.Status == constant.SessionStatusSigned {
					return apperror.Clone(apperror.ErrValidation, fmt.Sprintf("%s has already signed this document", e.SignerEmail))
				}

				result := tx.Model(&model.SigningSession{}).
					Where("id = ? AND status = ?", e.ID, constant.SessionStatusPending).
					Updates(map[string]any{"status": constant.SessionStatusRevoked, "revoked_at": now})
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return apperror.Clone(apperror.ErrValidation, fmt.Sprintf("%s has already signed this document", e.SignerEmail))
				}

				e.Status = constant.SessionStatusRevoked
				e.RevokedAt = &now
				revoked = append(revoked, e)
			}

			session.DocumentID = documentID
			if err := tx.Omit("Document").Create(session).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return revoked, nil
}

func (sr SigningSessionRepository) GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*model.SigningSession, error) {
	sr.logger.Debug("Get signing session by token hash")

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var session model.SigningSession
	if err := db.WithContext(ctx).Model(&model.SigningSession{}).
		Where("token_hash = ?", tokenHash).
		First(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

func (sr SigningSessionRepository) GetByID(ctx context.Context, tx *gorm.DB, sessionID string) (*model.SigningSession, error) {
	sr.logger.Debugf("Get signing session by id: %s", sessionID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var session model.SigningSession
	if err := db.WithContext(ctx).Model(&model.SigningSession{}).
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

func (sr SigningSessionRepository) ListByDocument(ctx context.Context, tx *gorm.DB, documentID string) ([]model.SigningSession, error) {
	sr.logger.Debugf("List signing sessions of document: %s", documentID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var sessions []model.SigningSession
	if err := db.WithContext(ctx).Model(&model.SigningSession{}).
		Where("document_id = ?", documentID).
		Order("created_at asc").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

func (sr SigningSessionRepository) ListValues(ctx context.Context, tx *gorm.DB, sessionID string) ([]model.FieldValue, error) {
	sr.logger.Debugf("List field values of session: %s", sessionID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return listValues(db.WithContext(ctx), sessionID)
}

// ApplyAutoFill writes the defaults once per session. It reports false when
// another request already did it or the session is no longer pending.
// Existing values are never overwritten.
func (sr SigningSessionRepository) ApplyAutoFill(ctx context.Context, tx *gorm.DB, sessionID string, at time.Time, values []model.FieldValue) (bool, error) {
	sr.logger.Debugf("Apply auto fill of %d values to session: %s", len(values), sessionID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	applied := false
	err := sr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		result := tx.Model(&model.SigningSession{}).
			Where("id = ? AND status = ? AND auto_filled_at IS NULL", sessionID, constant.SessionStatusPending).
			Update("auto_filled_at", at)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		if len(values) == 0 {
			return nil
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "field_id"}, {Name: "session_id"}},
			DoNothing: true,
		}).Omit("Field", "Session").Create(&values).Error
	})
	if err != nil {
		sr.logger.Errorf("Failed to auto fill session: %s, error: %v", sessionID, err)
		return false, err
	}

	return applied, nil
}

// RecordValue upserts one value while holding the session row lock, so it
// cannot interleave with Submit.
func (sr SigningSessionRepository) RecordValue(ctx context.Context, tx *gorm.DB, sessionID string, value model.FieldValue) error {
	sr.logger.Debugf("Record value of field: %s for session: %s", value.FieldID, sessionID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return sr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := lockPendingSession(tx, sessionID); err != nil {
			return err
		}

		value.SessionID = sessionID
		return upsertValues(tx, []model.FieldValue{value})
	})
}

// SetSignatureStyle stores the adopted style and writes the values fill derives from it.
func (sr SigningSessionRepository) SetSignatureStyle(ctx context.Context, tx *gorm.DB, sessionID, font, text string, fill ValuesFunc) error {
	sr.logger.Debugf("Set signature style of session: %s", sessionID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return sr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if _, err := lockPendingSession(tx, sessionID); err != nil {
			return err
		}

		if err := tx.Model(&model.SigningSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]any{"style_font": font, "style_text": text}).Error; err != nil {
			return err
		}

		if fill == nil {
			return nil
		}

		stored, err := listValues(tx, sessionID)
		if err != nil {
			return err
		}
		values, err := fill(stored)
		if err != nil {
			return err
		}

		return upsertValues(tx, values)
	})
}

// Submit flips the session to signed with a compare-and-set, then lets
// finalize validate the stored values and return the final ones to write.
// When the session is not pending nothing is mutated.
func (sr SigningSessionRepository) Submit(ctx context.Context, tx *gorm.DB, sessionID string, signedAt time.Time, finalize ValuesFunc) error {
	sr.logger.Debugf("Submit signing session: %s", sessionID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	err := sr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		result := tx.Model(&model.SigningSession{}).
			Where("id = ? AND status = ?", sessionID, constant.SessionStatusPending).
			Updates(map[string]any{"status": constant.SessionStatusSigned, "signed_at": signedAt})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notPendingError(tx, sessionID)
		}

		if finalize == nil {
			return nil
		}

		stored, err := listValues(tx, sessionID)
		if err != nil {
			return err
		}
		values, err := finalize(stored)
		if err != nil {
			return err
		}

		return upsertValues(tx, values)
	})
	if err != nil {
		sr.logger.Debugf("Submit of session: %s rejected: %v", sessionID, err)
		return err
	}

	return nil
}
