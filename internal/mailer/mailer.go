package mailer

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/skip2/go-qrcode"
)

const (
	MAX_RETRY = 3
)

type MailTemplateFile string

const (
	TemplateSigningInvitation MailTemplateFile = "templates/signing_invitation.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile MailTemplateFile, toEmail string, data any) (int, error)
}

type SigningInvitationData struct {
	AppName       string       `json:"appName"`
	LogoURL       string       `json:"logoUrl"`
	DocumentID    string       `json:"documentId"`
	DocumentTitle string       `json:"documentTitle"`
	SessionID     string       `json:"sessionId"`
	SignerName    string       `json:"signerName"`
	SignerRole    string       `json:"signerRole"`
	SigningLink   string       `json:"signingLink"`
	QRCode        template.URL `json:"qrCode"`
}

// QRCodeDataURI encodes link as an inline png so it renders without hosting an image.
func QRCodeDataURI(link string, size int) (template.URL, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}

// render executes the subject and body blocks of a template.
func render(templateFile MailTemplateFile, data any) (string, string, error) {
	tmpl, err := template.ParseFS(FS, string(templateFile))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", templateFile, err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", fmt.Errorf("failed to execute subject of %s: %w", templateFile, err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", fmt.Errorf("failed to execute body of %s: %w", templateFile, err)
	}

	return subject.String(), body.String(), nil
}
