package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ObjectStorage interface {
	Put(ctx context.Context, r io.Reader, fileName string, size int64, directory string) (*model.File, error)
	Open(ctx context.Context, file model.File) (io.ReadCloser, error)
	Remove(ctx context.Context, file model.File) error
}

type OwnedDocumentStore interface {
	DocumentStore
	Create(ctx context.Context, tx *gorm.DB, document *model.Document) (*model.Document, error)
	GetForOwner(ctx context.Context, tx *gorm.DB, documentID, ownerID string) (*model.Document, error)
	ListForOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]model.Document, error)
}

type SessionStatus struct {
	ID          string                 `json:"id"`
	SignerName  string                 `json:"signerName"`
	SignerEmail string                 `json:"signerEmail"`
	SignerRole  string                 `json:"signerRole"`
	Status      constant.SessionStatus `json:"status"`
	SignedAt    *time.Time             `json:"signedAt"`
}

type DocumentStatus struct {
	DocumentID    string          `json:"documentId"`
	Sessions      []SessionStatus `json:"sessions"`
	SignedCount   int             `json:"signedCount"`
	FullyExecuted bool            `json:"fullyExecuted"`
}

// deriveStatus: fully executed once there is at least one live session and
// every live session is signed. Revoked sessions do not count.
func deriveStatus(documentID string, sessions []model.SigningSession) DocumentStatus {
	status := DocumentStatus{DocumentID: documentID, Sessions: make([]SessionStatus, 0, len(sessions))}

	live := 0
	for _, s := range sessions {
		status.Sessions = append(status.Sessions, SessionStatus{
			ID:          s.ID,
			SignerName:  s.SignerName,
			SignerEmail: s.SignerEmail,
			SignerRole:  s.SignerRole,
			Status:      s.Status,
			SignedAt:    s.SignedAt,
		})

		if s.Status == constant.SessionStatusRevoked {
			continue
		}
		live++
		if s.Status == constant.SessionStatusSigned {
			status.SignedCount++
		}
	}
	status.FullyExecuted = live > 0 && status.SignedCount == live

	return status
}

type DocumentService struct {
	logger    *zap.SugaredLogger
	documents OwnedDocumentStore
	fields    FieldStore
	sessions  SessionStore
	activity  ActivityStore
	recorder  activityRecorder
	storage   ObjectStorage
	now       func() time.Time
}

func NewDocumentService(documents OwnedDocumentStore, stores Stores, storage ObjectStorage, logger *zap.SugaredLogger) *DocumentService {
	return &DocumentService{
		logger:    logger,
		documents: documents,
		fields:    stores.Fields,
		sessions:  stores.Sessions,
		activity:  stores.Activity,
		recorder:  activityRecorder{store: stores.Activity, logger: logger, now: time.Now},
		storage:   storage,
		now:       time.Now,
	}
}

// Upload validates the pdf, stores its bytes and creates the document.
func (s *DocumentService) Upload(ctx context.Context, ownerID, title, fileName string, rs io.ReadSeeker, size int64) (*model.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(fileName, ".pdf")
	}

	if !util.IsPdfFileName(fileName) {
		return nil, apperror.Clone(apperror.ErrValidation, "only pdf files can be uploaded")
	}
	if size <= 0 || size > constant.MAX_PDF_UPLOAD_SIZE {
		return nil, apperror.Clone(apperror.ErrValidation, fmt.Sprintf("pdf must be between 1 byte and %d MB", constant.MAX_PDF_UPLOAD_SIZE>>20))
	}

	pageCount, err := autosign.InspectPdf(rs)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrValidation, "file is not a readable pdf")
	}

	documentID := uuid.NewString()
	file, err := s.storage.Put(ctx, rs, fileName, size, util.GetDocumentDirectoryPath(documentID))
	if err != nil {
		return nil, err
	}

	document := &model.Document{
		BaseModel: model.BaseModel{ID: documentID},
		Title:     title,
		OwnerID:   ownerID,
		PageCount: pageCount,
		PdfFile:   *file,
	}
	if _, err := s.documents.Create(ctx, nil, document); err != nil {
		if rmErr := s.storage.Remove(ctx, *file); rmErr != nil {
			s.logger.Warnf("Failed to remove orphan object %s: %v", file.UniqueFileName, rmErr)
		}
		return nil, err
	}

	s.recorder.record(ctx, document.ID, constant.ActivityDocumentUploaded, ownerID, fmt.Sprintf("%s, %d pages", fileName, pageCount))

	return document, nil
}

// GetForOwner reports documents of other agents as not found.
func (s *DocumentService) GetForOwner(ctx context.Context, documentID, ownerID string) (*model.Document, error) {
	document, err := s.documents.GetForOwner(ctx, nil, documentID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Clone(apperror.ErrNotFound, "document not found")
		}
		return nil, err
	}
	return document, nil
}

func (s *DocumentService) ListForOwner(ctx context.Context, ownerID string) ([]model.Document, error) {
	documents, err := s.documents.ListForOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, err
	}
	if documents == nil {
		documents = []model.Document{}
	}
	return documents, nil
}

// OpenPdf streams the stored pdf, the caller closes it.
func (s *DocumentService) OpenPdf(ctx context.Context, document *model.Document) (io.ReadCloser, error) {
	return s.storage.Open(ctx, document.PdfFile)
}

func (s *DocumentService) Status(ctx context.Context, documentID string) (*DocumentStatus, error) {
	sessions, err := s.sessions.ListByDocument(ctx, nil, documentID)
	if err != nil {
		return nil, err
	}

	status := deriveStatus(documentID, sessions)
	return &status, nil
}

func (s *DocumentService) Activity(ctx context.Context, documentID string) ([]model.ActivityLog, error) {
	logs, err := s.activity.GetByDocumentID(ctx, nil, documentID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.ActivityLog{}
	}
	return logs, nil
}

// WriteSummary renders the signing status sheet of a document.
func (s *DocumentService) WriteSummary(ctx context.Context, w io.Writer, document *model.Document) error {
	status, err := s.Status(ctx, document.ID)
	if err != nil {
		return err
	}

	fields, err := s.fields.GetFields(ctx, nil, document.ID)
	if err != nil {
		return err
	}

	rows := make([]autosign.SummaryRow, 0, len(status.Sessions))
	for _, ss := range status.Sessions {
		rows = append(rows, autosign.SummaryRow{
			Name:     ss.SignerName,
			Email:    ss.SignerEmail,
			Role:     ss.SignerRole,
			Status:   string(ss.Status),
			SignedAt: ss.SignedAt,
		})
	}

	return autosign.WriteSummary(w, autosign.Summary{
		Title:         document.Title,
		DocumentID:    document.ID,
		PageCount:     document.PageCount,
		FieldCount:    len(fields),
		FullyExecuted: status.FullyExecuted,
		Rows:          rows,
		GeneratedAt:   s.now().UTC(),
	})
}
