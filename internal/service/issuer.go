package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/metrics"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/notifier"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"go.uber.org/zap"
)

type Recipient struct {
	Name  string `json:"name" form:"name" binding:"required,strNotEmpty,cmax=200"`
	Email string `json:"email" form:"email" binding:"required,email"`
	Role  string `json:"role" form:"role" binding:"cmax=100"`
}

func (r Recipient) signer() autosign.Signer {
	return autosign.Signer{Name: r.Name, Email: r.Email, Role: r.Role}
}

// IssuedSession carries the only copy of the plaintext token.
type IssuedSession struct {
	Session     model.SigningSession `json:"session"`
	Token       string               `json:"token"`
	SigningLink string               `json:"signingLink"`
}

type IssuerService struct {
	logger    *zap.SugaredLogger
	documents DocumentStore
	sessions  SessionStore
	notifier  notifier.Notifier
	metrics   *metrics.Metrics
	activity  activityRecorder
	// builds the public link for a plaintext token
	signingLink func(token string) string
}

func NewIssuerService(stores Stores, n notifier.Notifier, m *metrics.Metrics, signingLink func(token string) string, logger *zap.SugaredLogger) *IssuerService {
	return &IssuerService{
		logger:      logger,
		documents:   stores.Documents,
		sessions:    stores.Sessions,
		notifier:    n,
		metrics:     m,
		activity:    activityRecorder{store: stores.Activity, logger: logger, now: time.Now},
		signingLink: signingLink,
	}
}

func normalizeRecipients(recipients []Recipient) ([]Recipient, error) {
	if len(recipients) == 0 {
		return nil, apperror.Clone(apperror.ErrValidation, "at least one recipient is required")
	}

	out := make([]Recipient, 0, len(recipients))
	seen := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.TrimSpace(r.Email)
		r.Role = strings.TrimSpace(r.Role)

		if r.Email == "" {
			return nil, apperror.Clone(apperror.ErrValidation, "recipient email is required")
		}

		key := strings.ToLower(r.Email)
		if seen[key] {
			return nil, apperror.Clone(apperror.ErrValidation, fmt.Sprintf("recipient %s is listed more than once", r.Email))
		}
		seen[key] = true
		out = append(out, r)
	}

	return out, nil
}

// layoutCheck requires a non-empty layout whose assigned fields all belong to some recipient.
func layoutCheck(recipients []Recipient) func(fields []model.Field) error {
	return func(fields []model.Field) error {
		if len(fields) == 0 {
			return apperror.Clone(apperror.ErrValidation, "document has no fields to sign")
		}

		var orphans autosign.FieldErrors
		for i, f := range model.ToAutoSignFields(fields) {
			if !f.IsAssigned() {
				continue
			}

			matched := false
			for _, r := range recipients {
				if r.signer().Matches(f.AssignedTo) {
					matched = true
					break
				}
			}
			if !matched {
				orphans = append(orphans, autosign.FieldError{Index: i, FieldID: f.ID, Message: fmt.Sprintf("assigned to %q which matches no recipient", *f.AssignedTo)})
			}
		}

		if len(orphans) > 0 {
			return apperror.WithDetails(apperror.ErrValidation, "some fields are assigned to nobody in this send", orphans)
		}
		return nil
	}
}

// IssueSessions creates one session per recipient and notifies each of them.
// Notification failures are logged and counted, never returned.
func (s *IssuerService) IssueSessions(ctx context.Context, documentID, actor string, recipients []Recipient) ([]IssuedSession, error) {
	document, err := getDocument(ctx, s.documents, documentID)
	if err != nil {
		return nil, err
	}

	recipients, err = normalizeRecipients(recipients)
	if err != nil {
		return nil, err
	}

	issued := make([]IssuedSession, 0, len(recipients))
	sessions := make([]*model.SigningSession, 0, len(recipients))
	for _, r := range recipients {
		token, hash, err := util.NewSigningToken(constant.SIGNING_TOKEN_LENGTH)
		if err != nil {
			return nil, err
		}

		issued = append(issued, IssuedSession{Token: token, SigningLink: s.signingLink(token)})
		sessions = append(sessions, &model.SigningSession{
			DocumentID:  documentID,
			TokenHash:   hash,
			SignerName:  r.Name,
			SignerEmail: r.Email,
			SignerRole:  r.Role,
			Status:      constant.SessionStatusPending,
		})
	}

	revoked, err := s.sessions.Issue(ctx, nil, documentID, sessions, layoutCheck(recipients))
	if err != nil {
		return nil, err
	}

	for i, session := range sessions {
		issued[i].Session = *session
	}

	s.metrics.SessionsIssued(len(issued), len(revoked))
	for _, r := range revoked {
		s.activity.record(ctx, documentID, constant.ActivitySessionRevoked, actor, fmt.Sprintf("previous link of %s revoked", r.SignerEmail))
	}
	s.activity.record(ctx, documentID, constant.ActivitySessionsIssued, actor, fmt.Sprintf("%d recipients", len(issued)))

	s.notifyAll(ctx, document, issued)

	return issued, nil
}

func (s *IssuerService) notifyAll(ctx context.Context, document *model.Document, issued []IssuedSession) {
	if s.notifier == nil {
		return
	}

	for _, is := range issued {
		err := s.notifier.Notify(ctx, notifier.Invitation{
			DocumentID:    document.ID,
			DocumentTitle: document.Title,
			SessionID:     is.Session.ID,
			SignerName:    is.Session.SignerName,
			SignerEmail:   is.Session.SignerEmail,
			SignerRole:    is.Session.SignerRole,
			SigningLink:   is.SigningLink,
		})
		if err != nil {
			s.logger.Errorw("failed to notify signer", "documentId", document.ID, "sessionId", is.Session.ID,
				"channel", s.notifier.Channel(), "error", err)
			s.metrics.NotificationFailed(s.notifier.Channel())
			s.activity.record(ctx, document.ID, constant.ActivityNotifyFailed, "system", fmt.Sprintf("invitation to %s not delivered", is.Session.SignerEmail))
		}
	}
}
