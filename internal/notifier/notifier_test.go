package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/SeakMengs/AutoSign/internal/mailer"
	"github.com/SeakMengs/AutoSign/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	status int
	err    error
	sentTo []string
	data   []any
}

func (m *fakeMailer) Send(templateFile mailer.MailTemplateFile, toEmail string, data any) (int, error) {
	m.sentTo = append(m.sentTo, toEmail)
	m.data = append(m.data, data)
	return m.status, m.err
}

type fakePublisher struct {
	routingKey queue.QueueName
	body       []byte
	err        error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey queue.QueueName, body []byte) error {
	p.routingKey = routingKey
	p.body = body
	return p.err
}

var invitation = Invitation{
	DocumentID:    "doc-1",
	DocumentTitle: "Purchase agreement",
	SessionID:     "session-1",
	SignerName:    "Jane Doe",
	SignerEmail:   "buyer@x.com",
	SignerRole:    "buyer",
	SigningLink:   "https://app.example.com/sign/abc",
}

func TestMailNotifier(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("Accepted", func(t *testing.T) {
		m := &fakeMailer{status: http.StatusAccepted}
		require.NoError(t, NewMailNotifier(m, "https://app.example.com", logger).Notify(context.Background(), invitation))

		require.Equal(t, []string{"buyer@x.com"}, m.sentTo)
		data, ok := m.data[0].(mailer.SigningInvitationData)
		require.True(t, ok)
		assert.Equal(t, invitation.SigningLink, data.SigningLink)
		assert.NotEmpty(t, data.QRCode)
	})

	t.Run("Provider error", func(t *testing.T) {
		m := &fakeMailer{status: -1, err: errors.New("smtp down")}
		assert.Error(t, NewMailNotifier(m, "", logger).Notify(context.Background(), invitation))
	})

	t.Run("Rejected status", func(t *testing.T) {
		m := &fakeMailer{status: http.StatusForbidden}
		assert.Error(t, NewMailNotifier(m, "", logger).Notify(context.Background(), invitation))
	})
}

func TestQueueNotifier(t *testing.T) {
	p := &fakePublisher{}
	require.NoError(t, NewQueueNotifier(p, "https://app.example.com", zap.NewNop().Sugar()).Notify(context.Background(), invitation))

	assert.Equal(t, queue.QueueMail, p.routingKey)

	var job queue.MailJobPayload
	require.NoError(t, json.Unmarshal(p.body, &job))
	assert.Equal(t, "buyer@x.com", job.ToEmail)
	assert.Equal(t, mailer.TemplateSigningInvitation, job.TemplateFile)

	p.err = errors.New("channel closed")
	assert.Error(t, NewQueueNotifier(p, "", zap.NewNop().Sugar()).Notify(context.Background(), invitation))
}
