package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSigningInvitation(t *testing.T) {
	qr, err := QRCodeDataURI("https://app.example.com/sign/abc", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(qr), "data:image/png;base64,"))

	subject, body, err := render(TemplateSigningInvitation, SigningInvitationData{
		AppName:       "AutoSign",
		DocumentTitle: "Purchase agreement",
		SignerName:    "Jane Doe",
		SignerRole:    "buyer",
		SigningLink:   "https://app.example.com/sign/abc",
		QRCode:        qr,
	})
	require.NoError(t, err)

	assert.Equal(t, `Jane Doe, please sign "Purchase agreement"`, strings.TrimSpace(subject))
	assert.Contains(t, body, "https://app.example.com/sign/abc")
	assert.Contains(t, body, "as the buyer")
	assert.Contains(t, body, `src="data:image/png;base64,`)
	assert.NotContains(t, body, "ZgotmplZ")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := render(MailTemplateFile("templates/missing.tmpl"), nil)
	assert.Error(t, err)
}
