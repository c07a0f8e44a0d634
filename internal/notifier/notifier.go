package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SeakMengs/AutoSign/internal/mailer"
	"github.com/SeakMengs/AutoSign/internal/queue"
	"github.com/SeakMengs/AutoSign/internal/util"
	"go.uber.org/zap"
)

const qrCodeSize = 256

// Invitation asks one recipient to open their signing link.
type Invitation struct {
	DocumentID    string
	DocumentTitle string
	SessionID     string
	SignerName    string
	SignerEmail   string
	SignerRole    string
	SigningLink   string
}

type Notifier interface {
	Notify(ctx context.Context, invitation Invitation) error
	// Channel labels failures in metrics and logs.
	Channel() string
}

func invitationData(invitation Invitation, frontendURL string) (mailer.SigningInvitationData, error) {
	qr, err := mailer.QRCodeDataURI(invitation.SigningLink, qrCodeSize)
	if err != nil {
		return mailer.SigningInvitationData{}, err
	}

	return mailer.SigningInvitationData{
		AppName:       util.GetAppName(),
		LogoURL:       util.GetAppLogoURL(frontendURL),
		DocumentID:    invitation.DocumentID,
		DocumentTitle: invitation.DocumentTitle,
		SessionID:     invitation.SessionID,
		SignerName:    invitation.SignerName,
		SignerRole:    invitation.SignerRole,
		SigningLink:   invitation.SigningLink,
		QRCode:        qr,
	}, nil
}

// MailNotifier sends the invitation inline through a mail provider.
type MailNotifier struct {
	mailer      mailer.Client
	frontendURL string
	logger      *zap.SugaredLogger
}

func NewMailNotifier(client mailer.Client, frontendURL string, logger *zap.SugaredLogger) *MailNotifier {
	return &MailNotifier{mailer: client, frontendURL: frontendURL, logger: logger}
}

func (n MailNotifier) Channel() string {
	return "mail"
}

func (n MailNotifier) Notify(ctx context.Context, invitation Invitation) error {
	data, err := invitationData(invitation, n.frontendURL)
	if err != nil {
		return err
	}

	status, err := n.mailer.Send(mailer.TemplateSigningInvitation, invitation.SignerEmail, data)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("mail provider responded with status %d", status)
	}

	n.logger.Infow("signing invitation sent", "documentId", invitation.DocumentID, "sessionId", invitation.SessionID)
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, routingKey queue.QueueName, body []byte) error
}

// QueueNotifier hands the invitation to the mail consumer through RabbitMQ.
type QueueNotifier struct {
	publisher   Publisher
	frontendURL string
	logger      *zap.SugaredLogger
}

func NewQueueNotifier(publisher Publisher, frontendURL string, logger *zap.SugaredLogger) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, frontendURL: frontendURL, logger: logger}
}

func (n QueueNotifier) Channel() string {
	return "queue"
}

func (n QueueNotifier) Notify(ctx context.Context, invitation Invitation) error {
	data, err := invitationData(invitation, n.frontendURL)
	if err != nil {
		return err
	}

	job, err := queue.NewSigningInvitationMailJob(invitation.SignerEmail, data)
	if err != nil {
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	if err := n.publisher.Publish(ctx, queue.QueueMail, body); err != nil {
		return fmt.Errorf("failed to publish mail job: %w", err)
	}

	n.logger.Infow("signing invitation queued", "documentId", invitation.DocumentID, "sessionId", invitation.SessionID)
	return nil
}

// LogNotifier only logs, used when no mail provider is configured.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n LogNotifier) Channel() string {
	return "log"
}

func (n LogNotifier) Notify(ctx context.Context, invitation Invitation) error {
	n.logger.Infow("signing invitation", "documentId", invitation.DocumentID, "sessionId", invitation.SessionID,
		"signerEmail", invitation.SignerEmail, "signingLink", invitation.SigningLink)
	return nil
}
