package email

import "strings"

// placeholder is the token replaced with the recipient address when
// personalizing the subject and bodies.
const placeholder = "{email}"

// Composer builds per-recipient messages from a shared template.
// Attachments are referenced, not copied: every composed message points at
// the same underlying payload bytes.
type Composer struct {
	From        string
	Subject     string
	TextBody    string
	HtmlBody    string
	Attachments []Attachment
}

// Compose builds the outbound message for a single recipient. The {email}
// placeholder in the subject and bodies is expanded to the recipient address.
func (c *Composer) Compose(recipient string) *Message {
	return &Message{
		From:        c.From,
		To:          recipient,
		Subject:     expand(c.Subject, recipient),
		TextBody:    expand(c.TextBody, recipient),
		HtmlBody:    expand(c.HtmlBody, recipient),
		Attachments: c.Attachments,
	}
}

func expand(s, recipient string) string {
	if !strings.Contains(s, placeholder) {
		return s
	}
	return strings.ReplaceAll(s, placeholder, recipient)
}
