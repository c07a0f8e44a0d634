package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/notifier"
	"github.com/SeakMengs/AutoSign/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for the postgres repositories. One mutex
// plays the role of the row locks and transactions.
type memDB struct {
	mu        sync.Mutex
	documents map[string]model.Document
	fields    map[string][]model.Field
	sessions  map[string]*model.SigningSession
	values    map[string]map[string]model.FieldValue
	activity  []model.ActivityLog
}

func newMemDB() *memDB {
	return &memDB{
		documents: map[string]model.Document{},
		fields:    map[string][]model.Field{},
		sessions:  map[string]*model.SigningSession{},
		values:    map[string]map[string]model.FieldValue{},
	}
}

func (db *memDB) stores() Stores {
	return Stores{
		Documents: memDocuments{db},
		Fields:    memFields{db},
		Sessions:  memSessions{db},
		Activity:  memActivity{db},
	}
}

func (db *memDB) addDocument(pageCount int) model.Document {
	db.mu.Lock()
	defer db.mu.Unlock()

	d := model.Document{BaseModel: model.BaseModel{ID: uuid.NewString()}, Title: "Purchase agreement", OwnerID: "agent-1", PageCount: pageCount}
	db.documents[d.ID] = d
	return d
}

func (db *memDB) events(documentID string) []constant.ActivityEvent {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []constant.ActivityEvent
	for _, a := range db.activity {
		if a.DocumentID == documentID {
			out = append(out, a.EventType)
		}
	}
	return out
}

func (db *memDB) sessionByEmail(email string) []model.SigningSession {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []model.SigningSession
	for _, s := range db.sessions {
		if strings.EqualFold(s.SignerEmail, email) {
			out = append(out, *s)
		}
	}
	return out
}

type memDocuments struct{ db *memDB }

func (m memDocuments) GetByID(ctx context.Context, tx *gorm.DB, documentID string) (*model.Document, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	d, ok := m.db.documents[documentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (m memDocuments) Create(ctx context.Context, tx *gorm.DB, document *model.Document) (*model.Document, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	m.db.documents[document.ID] = *document
	return document, nil
}

func (m memDocuments) GetForOwner(ctx context.Context, tx *gorm.DB, documentID, ownerID string) (*model.Document, error) {
	d, err := m.GetByID(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (m memDocuments) ListForOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]model.Document, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []model.Document
	for _, d := range m.db.documents {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

type memFields struct{ db *memDB }

func (m memFields) GetFields(ctx context.Context, tx *gorm.DB, documentID string) ([]model.Field, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	return append([]model.Field(nil), m.db.fields[documentID]...), nil
}

func (m memFields) ReplaceFields(ctx context.Context, tx *gorm.DB, documentID string, fields []model.Field) ([]model.Field, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, s := range m.db.sessions {
		if s.DocumentID == documentID {
			return nil, apperror.ErrLayoutLocked
		}
	}

	for other, rows := range m.db.fields {
		if other == documentID {
			continue
		}
		for _, row := range rows {
			for _, f := range fields {
				if f.ID != "" && f.ID == row.ID {
					return nil, apperror.WithDetails(apperror.ErrValidation, "field id already used by another document", []string{f.ID})
				}
			}
		}
	}

	saved := make([]model.Field, 0, len(fields))
	for i, f := range fields {
		f.DocumentID = documentID
		f.SortOrder = i
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		saved = append(saved, f)
	}
	m.db.fields[documentID] = saved
	return append([]model.Field(nil), saved...), nil
}

type memSessions struct{ db *memDB }

func (m memSessions) Issue(ctx context.Context, tx *gorm.DB, documentID string, sessions []*model.SigningSession, check repository.LayoutCheck) ([]model.SigningSession, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if check != nil {
		if err := check(m.db.fields[documentID]); err != nil {
			return nil, err
		}
	}

	// validate first so a failure writes nothing
	for _, ns := range sessions {
		for _, s := range m.db.sessions {
			if s.DocumentID == documentID && strings.EqualFold(s.SignerEmail, ns.SignerEmail) && s.Status == constant.SessionStatusSigned {
				return nil, apperror.Clone(apperror.ErrValidation, fmt.Sprintf("%s has already signed this document", s.SignerEmail))
			}
		}
	}

	now := time.Now()
	var revoked []model.SigningSession
	for _, ns := range sessions {
		for _, s := range m.db.sessions {
			if s.DocumentID == documentID && strings.EqualFold(s.SignerEmail, ns.SignerEmail) && s.Status == constant.SessionStatusPending {
				s.Status = constant.SessionStatusRevoked
				s.RevokedAt = &now
				revoked = append(revoked, *s)
			}
		}

		ns.ID = uuid.NewString()
		ns.DocumentID = documentID
		ns.CreatedAt = &now
		stored := *ns
		m.db.sessions[ns.ID] = &stored
	}

	return revoked, nil
}

func (m memSessions) GetByTokenHash(ctx context.Context, tx *gorm.DB, tokenHash string) (*model.SigningSession, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	for _, s := range m.db.sessions {
		if s.TokenHash == tokenHash {
			out := *s
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memSessions) ListByDocument(ctx context.Context, tx *gorm.DB, documentID string) ([]model.SigningSession, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []model.SigningSession
	for _, s := range m.db.sessions {
		if s.DocumentID == documentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m memSessions) listValues(sessionID string) []model.FieldValue {
	var out []model.FieldValue
	for _, v := range m.db.values[sessionID] {
		out = append(out, v)
	}
	return out
}

func (m memSessions) upsert(sessionID string, values []model.FieldValue, overwrite bool) {
	if m.db.values[sessionID] == nil {
		m.db.values[sessionID] = map[string]model.FieldValue{}
	}
	for _, v := range values {
		if _, ok := m.db.values[sessionID][v.FieldID]; ok && !overwrite {
			continue
		}
		v.SessionID = sessionID
		m.db.values[sessionID][v.FieldID] = v
	}
}

// singleRowPerField fails like an ON CONFLICT DO UPDATE batch that touches a row twice.
func singleRowPerField(values []model.FieldValue) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v.FieldID] {
			return fmt.Errorf("ON CONFLICT DO UPDATE command cannot affect row a second time: field %s", v.FieldID)
		}
		seen[v.FieldID] = true
	}
	return nil
}

func (m memSessions) pending(sessionID string) (*model.SigningSession, error) {
	s, ok := m.db.sessions[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	switch s.Status {
	case constant.SessionStatusPending:
		return s, nil
	case constant.SessionStatusRevoked:
		return nil, apperror.ErrInvalidOrExpiredToken
	default:
		return nil, apperror.ErrSessionAlreadySigned
	}
}

func (m memSessions) ListValues(ctx context.Context, tx *gorm.DB, sessionID string) ([]model.FieldValue, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	return m.listValues(sessionID), nil
}

func (m memSessions) ApplyAutoFill(ctx context.Context, tx *gorm.DB, sessionID string, at time.Time, values []model.FieldValue) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	s, ok := m.db.sessions[sessionID]
	if !ok || s.Status != constant.SessionStatusPending || s.AutoFilledAt != nil {
		return false, nil
	}
	s.AutoFilledAt = &at
	m.upsert(sessionID, values, false)
	return true, nil
}

func (m memSessions) RecordValue(ctx context.Context, tx *gorm.DB, sessionID string, value model.FieldValue) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, err := m.pending(sessionID); err != nil {
		return err
	}
	m.upsert(sessionID, []model.FieldValue{value}, true)
	return nil
}

func (m memSessions) SetSignatureStyle(ctx context.Context, tx *gorm.DB, sessionID, font, text string, fill repository.ValuesFunc) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	s, err := m.pending(sessionID)
	if err != nil {
		return err
	}

	values, err := fill(m.listValues(sessionID))
	if err != nil {
		return err
	}
	s.StyleFont = &font
	s.StyleText = &text
	m.upsert(sessionID, values, true)
	return nil
}

func (m memSessions) Submit(ctx context.Context, tx *gorm.DB, sessionID string, signedAt time.Time, finalize repository.ValuesFunc) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	s, err := m.pending(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrInvalidOrExpiredToken
		}
		return err
	}

	values, err := finalize(m.listValues(sessionID))
	if err != nil {
		return err
	}
	if err := singleRowPerField(values); err != nil {
		return err
	}

	s.Status = constant.SessionStatusSigned
	s.SignedAt = &signedAt
	m.upsert(sessionID, values, true)
	return nil
}

type memActivity struct{ db *memDB }

func (m memActivity) Create(ctx context.Context, tx *gorm.DB, log *model.ActivityLog) (*model.ActivityLog, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	m.db.activity = append(m.db.activity, *log)
	return log, nil
}

func (m memActivity) GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID string) ([]model.ActivityLog, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []model.ActivityLog
	for _, a := range m.db.activity {
		if a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	invitations []notifier.Invitation
	fail        bool
}

func (f *fakeNotifier) Notify(ctx context.Context, invitation notifier.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invitations = append(f.invitations, invitation)
	if f.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (f *fakeNotifier) Channel() string {
	return "fake"
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Put(ctx context.Context, r io.Reader, fileName string, size int64, directory string) (*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	key := directory + "/" + fileName
	s.objects[key] = data
	return &model.File{FileName: fileName, UniqueFileName: key, BucketName: "test", Size: int64(len(data))}, nil
}

func (s *memStorage) Open(ctx context.Context, file model.File) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[file.UniqueFileName]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) Remove(ctx context.Context, file model.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, file.UniqueFileName)
	s.removed = append(s.removed, file.UniqueFileName)
	return nil
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func strPtr(s string) *string {
	return &s
}
