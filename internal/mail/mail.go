// Package mail delivers composed applications by email. A Resend API
// sender is the primary transport with plain SMTP as fallback; the
// Dispatcher owns batching, pacing and status bookkeeping.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rafael/autoapply/internal/types"
)

// Attachment is a file attached to an outgoing message, typically the
// candidate's résumé.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is one outgoing application email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers a single message over one transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// BuildHTML wraps a cover letter in the application email body, signed
// with the candidate's contact details.
func BuildHTML(profile *types.CandidateProfile, draft *types.ApplicationDraft) string {
	letterHTML := strings.ReplaceAll(draft.CoverLetter, "\n", "<br>")

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Candidatura</title></head>`)
	b.WriteString(`<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&b, `<h2 style="color: #2c3e50;">%s</h2>`, draft.Subject)
	b.WriteString(`<div style="background-color: #f8f9fa; padding: 20px; border-left: 4px solid #007bff; margin: 20px 0;">`)
	b.WriteString(letterHTML)
	b.WriteString(`</div>`)
	b.WriteString(`<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;">`)
	fmt.Fprintf(&b, `<p><strong>%s</strong><br>%s</p>`, profile.Name, profile.Email)
	if profile.Phone != "" {
		fmt.Fprintf(&b, `<p>Telefone: %s</p>`, profile.Phone)
	}
	if profile.Location != "" {
		fmt.Fprintf(&b, `<p>Localização: %s</p>`, profile.Location)
	}
	b.WriteString(`</div></div></body></html>`)

	return b.String()
}
