package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/metrics"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SigningDocument struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PageCount int    `json:"pageCount"`
}

// SigningView is everything a signer sees: only their visible fields.
type SigningView struct {
	Session        model.SigningSession     `json:"session"`
	Document       SigningDocument          `json:"document"`
	Fields         []autosign.Field         `json:"fields"`
	Values         map[string]any           `json:"values"`
	Completion     autosign.Completion      `json:"completion"`
	SignatureStyle *autosign.SignatureStyle `json:"signatureStyle"`
}

type SubmittedValue struct {
	FieldID string `json:"fieldId" binding:"required"`
	Value   any    `json:"value"`
}

type SubmitResult struct {
	SignedAt      time.Time `json:"signedAt"`
	FullyExecuted bool      `json:"fullyExecuted"`
}

type SigningService struct {
	logger    *zap.SugaredLogger
	documents DocumentStore
	fields    FieldStore
	sessions  SessionStore
	metrics   *metrics.Metrics
	activity  activityRecorder
	location  *time.Location
	now       func() time.Time
}

func NewSigningService(stores Stores, m *metrics.Metrics, location *time.Location, logger *zap.SugaredLogger) *SigningService {
	if location == nil {
		location = time.UTC
	}

	return &SigningService{
		logger:    logger,
		documents: stores.Documents,
		fields:    stores.Fields,
		sessions:  stores.Sessions,
		metrics:   m,
		activity:  activityRecorder{store: stores.Activity, logger: logger, now: time.Now},
		location:  location,
		now:       time.Now,
	}
}

// resolve maps a token to its session. Unknown and revoked tokens look the same.
func (s *SigningService) resolve(ctx context.Context, token string) (*model.SigningSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.ErrInvalidOrExpiredToken
	}

	session, err := s.sessions.GetByTokenHash(ctx, nil, util.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	if session.Status == constant.SessionStatusRevoked {
		return nil, apperror.ErrInvalidOrExpiredToken
	}

	return session, nil
}

func (s *SigningService) resolvePending(ctx context.Context, token string) (*model.SigningSession, error) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.IsPending() {
		return nil, apperror.ErrSessionAlreadySigned
	}
	return session, nil
}

func (s *SigningService) visibleFields(ctx context.Context, session *model.SigningSession) ([]autosign.Field, error) {
	fields, err := s.fields.GetFields(ctx, nil, session.DocumentID)
	if err != nil {
		return nil, err
	}

	return autosign.VisibleTo(model.ToAutoSignFields(fields), session.Signer()), nil
}

func (s *SigningService) values(ctx context.Context, sessionID string) (autosign.Values, error) {
	stored, err := s.sessions.ListValues(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	return model.ToAutoSignValues(stored), nil
}

func toFieldValues(sessionID string, values []autosign.Value) []model.FieldValue {
	out := make([]model.FieldValue, 0, len(values))
	for _, v := range values {
		out = append(out, model.NewFieldValue(sessionID, v))
	}
	return out
}

func findField(fields []autosign.Field, id string) (autosign.Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return autosign.Field{}, false
}

func (s *SigningService) rejectInvisible(session *model.SigningSession, fieldID string) error {
	s.logger.Warnw("write to a field not visible to the session", "sessionId", session.ID, "documentId", session.DocumentID, "fieldId", fieldID)
	s.metrics.RejectedFieldAccess()
	return apperror.ErrFieldNotVisible
}

// FieldsVisibleTo returns the signer's fields, values and completion. The
// first call of a pending session pre-fills date, name and email fields.
func (s *SigningService) FieldsVisibleTo(ctx context.Context, token string) (*SigningView, error) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	document, err := getDocument(ctx, s.documents, session.DocumentID)
	if err != nil {
		return nil, err
	}

	visible, err := s.visibleFields(ctx, session)
	if err != nil {
		return nil, err
	}

	values, err := s.values(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if session.IsPending() && session.AutoFilledAt == nil {
		now := s.now()
		fills := autosign.AutoFill(visible, values, session.Signer(), now.In(s.location))
		applied, err := s.sessions.ApplyAutoFill(ctx, nil, session.ID, now, toFieldValues(session.ID, fills))
		if err != nil {
			return nil, err
		}
		if applied {
			session.AutoFilledAt = &now
		}
		// reload either way, a concurrent first fetch may have filled instead
		if values, err = s.values(ctx, session.ID); err != nil {
			return nil, err
		}
	}

	raw := make(map[string]any, len(visible))
	for _, f := range visible {
		if v, ok := values[f.ID]; ok {
			raw[f.ID] = v.Raw(f.Type)
		}
	}

	return &SigningView{
		Session: *session,
		Document: SigningDocument{
			ID:        document.ID,
			Title:     document.Title,
			PageCount: document.PageCount,
		},
		Fields:         visible,
		Values:         raw,
		Completion:     autosign.ComputeCompletion(visible, values),
		SignatureStyle: session.SignatureStyle(),
	}, nil
}

// RecordValue stores one value of a visible field and returns the new completion.
func (s *SigningService) RecordValue(ctx context.Context, token, fieldID string, raw any) (*autosign.Completion, error) {
	session, err := s.resolvePending(ctx, token)
	if err != nil {
		return nil, err
	}

	visible, err := s.visibleFields(ctx, session)
	if err != nil {
		return nil, err
	}

	field, ok := findField(visible, fieldID)
	if !ok {
		return nil, s.rejectInvisible(session, fieldID)
	}

	value, err := autosign.NewValue(field, raw)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrValidation, err.Error())
	}

	if err := s.sessions.RecordValue(ctx, nil, session.ID, model.NewFieldValue(session.ID, value)); err != nil {
		return nil, err
	}

	values, err := s.values(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	completion := autosign.ComputeCompletion(visible, values)
	return &completion, nil
}

// ChooseSignatureStyle adopts a style and fills every empty visible
// signature and initials field with it.
func (s *SigningService) ChooseSignatureStyle(ctx context.Context, token string, style autosign.SignatureStyle) (*SigningView, error) {
	style.Font = strings.TrimSpace(style.Font)
	style.Text = strings.TrimSpace(style.Text)
	if style.Font == "" || style.Text == "" {
		return nil, apperror.Clone(apperror.ErrValidation, "signature style needs a font and a text")
	}

	session, err := s.resolvePending(ctx, token)
	if err != nil {
		return nil, err
	}

	visible, err := s.visibleFields(ctx, session)
	if err != nil {
		return nil, err
	}

	err = s.sessions.SetSignatureStyle(ctx, nil, session.ID, style.Font, style.Text, func(stored []model.FieldValue) ([]model.FieldValue, error) {
		fills := autosign.StyleFill(visible, model.ToAutoSignValues(stored), style)
		return toFieldValues(session.ID, fills), nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, session.DocumentID, constant.ActivitySignatureStyle, session.SignerEmail, style.Font)

	return s.FieldsVisibleTo(ctx, token)
}

// Submit signs the session once and for all. Final values are merged over the
// stored ones and every required visible field must be filled.
func (s *SigningService) Submit(ctx context.Context, token string, final []SubmittedValue) (*SubmitResult, error) {
	session, err := s.resolvePending(ctx, token)
	if err != nil {
		s.metrics.Submission(submissionResult(err))
		return nil, err
	}

	visible, err := s.visibleFields(ctx, session)
	if err != nil {
		return nil, err
	}

	// one row per field, the last submitted value wins as in Merge
	finalValues := make([]autosign.Value, 0, len(final))
	position := make(map[string]int, len(final))
	for _, sv := range final {
		field, ok := findField(visible, sv.FieldID)
		if !ok {
			s.metrics.Submission("rejected")
			return nil, s.rejectInvisible(session, sv.FieldID)
		}

		value, err := autosign.NewValue(field, sv.Value)
		if err != nil {
			s.metrics.Submission("rejected")
			return nil, apperror.Wrap(err, apperror.ErrValidation, err.Error())
		}
		if i, seen := position[value.FieldID]; seen {
			finalValues[i] = value
			continue
		}
		position[value.FieldID] = len(finalValues)
		finalValues = append(finalValues, value)
	}

	signedAt := s.now().UTC()
	err = s.sessions.Submit(ctx, nil, session.ID, signedAt, func(stored []model.FieldValue) ([]model.FieldValue, error) {
		merged := model.ToAutoSignValues(stored).Merge(finalValues)
		completion := autosign.ComputeCompletion(visible, merged)
		if !completion.RequiredSatisfied {
			return nil, apperror.WithDetails(apperror.ErrRequiredFieldsIncomplete, "", completion.MissingRequired)
		}
		return toFieldValues(session.ID, finalValues), nil
	})
	if err != nil {
		s.metrics.Submission(submissionResult(err))
		return nil, err
	}
	s.metrics.Submission("signed")

	s.activity.record(ctx, session.DocumentID, constant.ActivitySessionSigned, session.SignerEmail, session.SignerName)

	result := &SubmitResult{SignedAt: signedAt}
	sessions, err := s.sessions.ListByDocument(ctx, nil, session.DocumentID)
	if err != nil {
		// the signature is committed, completion is only reporting
		s.logger.Errorw("failed to check document completion", "documentId", session.DocumentID, "error", err)
		return result, nil
	}

	if status := deriveStatus(session.DocumentID, sessions); status.FullyExecuted {
		result.FullyExecuted = true
		s.activity.record(ctx, session.DocumentID, constant.ActivityDocumentCompleted, "system", "all recipients signed")
	}

	return result, nil
}

func submissionResult(err error) string {
	switch {
	case errors.Is(err, apperror.ErrSessionAlreadySigned):
		return "already_signed"
	case errors.Is(err, apperror.ErrRequiredFieldsIncomplete):
		return "incomplete"
	case errors.Is(err, apperror.ErrInvalidOrExpiredToken):
		return "invalid_token"
	default:
		return "error"
	}
}

// DocumentFor returns the document behind a live token, signed sessions
// included so the signer can download what they signed.
func (s *SigningService) DocumentFor(ctx context.Context, token string) (*model.Document, error) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	return getDocument(ctx, s.documents, session.DocumentID)
}
