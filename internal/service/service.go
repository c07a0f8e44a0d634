package service

import (
	"context"
	"errors"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DocumentStore interface {
	GetByID(ctx context.Context, tx *gorm.DB, documentID string) (*model.Document, error)
}

type FieldStore interface {
	GetFields(ctx context.Context, tx *gorm.DB, documentID string) ([]model.Field, error)
	ReplaceFields(ctx context.Context, tx *gorm.DB, documentID string, fields []model.Field) ([]model.Field, error)
}

type SessionStore interface {
	Issue(ctx context.Context, tx *gorm.DB, documentID string, sessions []*model.SigningSession, check repository.LayoutCheck) ([]model.SigningSession, error)
	GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*model.SigningSession, error)
	ListByDocument(ctx context.Context, tx *gorm.DB, documentID string) ([]model.SigningSession, error)
	ListValues(ctx context.Context, tx *gorm.DB, sessionID string) ([]model.FieldValue, error)
	ApplyAutoFill(ctx context.Context, tx *gorm.DB, sessionID string, at time.Time, values []model.FieldValue) (bool, error)
	RecordValue(ctx context.Context, tx *gorm.DB, sessionID string, value model.FieldValue) error
	SetSignatureStyle(ctx context.Context, tx *gorm.DB, sessionID, font, text string, fill repository.ValuesFunc) error
	Submit(ctx context.Context, tx *gorm.DB, sessionID string, signedAt time.Time, finalize repository.ValuesFunc) error
}

type ActivityStore interface {
	Create(ctx context.Context, tx *gorm.DB, log *model.ActivityLog) (*model.ActivityLog, error)
	GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID string) ([]model.ActivityLog, error)
}

// Stores bundles the persistence a service needs.
type Stores struct {
	Documents DocumentStore
	Fields    FieldStore
	Sessions  SessionStore
	Activity  ActivityStore
}

func NewStores(repo *repository.Repository) Stores {
	return Stores{
		Documents: repo.Document,
		Fields:    repo.Field,
		Sessions:  repo.SigningSession,
		Activity:  repo.ActivityLog,
	}
}

// activityRecorder writes activity entries without letting failures reach the caller.
type activityRecorder struct {
	store  ActivityStore
	logger *zap.SugaredLogger
	now    func() time.Time
}

func (r activityRecorder) record(ctx context.Context, documentID string, event constant.ActivityEvent, actor, detail string) {
	if r.store == nil {
		return
	}

	// the request may already be done, the entry should still land
	ctx = context.WithoutCancel(ctx)
	if _, err := r.store.Create(ctx, nil, &model.ActivityLog{
		DocumentID: documentID,
		EventType:  event,
		Actor:      actor,
		Detail:     detail,
		Timestamp:  r.now(),
	}); err != nil {
		r.logger.Errorw("failed to record activity", "documentId", documentID, "event", event, "error", err)
	}
}

func getDocument(ctx context.Context, store DocumentStore, documentID string) (*model.Document, error) {
	document, err := store.GetByID(ctx, nil, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Clone(apperror.ErrNotFound, "document not found")
		}
		return nil, err
	}
	return document, nil
}
