// Package email defines the outbound message data model and the composer
// that personalizes a template for each recipient.
package email

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// Message represents a single outbound email. Each message carries exactly
// one recipient; the delivery runner builds one per address.
type Message struct {
	From        string
	To          string
	Subject     string
	TextBody    string
	HtmlBody    string
	Attachments []Attachment
}

// Attachment represents a file attached to an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// LoadAttachment reads a file from disk and returns it as an Attachment.
// The content type is detected from the file extension, falling back to
// application/octet-stream for unknown extensions.
func LoadAttachment(path string) (Attachment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	filename := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}
