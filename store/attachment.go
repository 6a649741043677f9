package store

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// AttachmentType discriminates the attachment union.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentText  AttachmentType = "text"
)

// Attachment is user-supplied content attached to a message or staged for
// the next send. Image attachments carry base64 Data; text attachments carry
// decoded Content.
type Attachment struct {
	ID       string         `json:"id,omitempty"`
	Type     AttachmentType `json:"type"`
	Name     string         `json:"name"`
	Size     int64          `json:"size"`
	MimeType string         `json:"mimeType"`
	Data     string         `json:"data,omitempty"`
	Content  string         `json:"content,omitempty"`
}

var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

var supportedTextTypes = map[string]bool{
	"text/plain":      true,
	"text/markdown":   true,
	"text/csv":        true,
	"application/pdf": true,
}

var supportedTextExtensions = []string{".md", ".txt", ".csv"}

// UnsupportedAttachmentError reports a rejected file. It is always recovered
// at the edge with a user-facing message, never propagated into the
// conversation state.
type UnsupportedAttachmentError struct {
	Name   string
	Reason string
}

func (e *UnsupportedAttachmentError) Error() string {
	return fmt.Sprintf("unsupported attachment %q: %s", e.Name, e.Reason)
}

// IsImageMimeType reports whether the MIME type is an allowed image format.
func IsImageMimeType(mimeType string) bool {
	return supportedImageTypes[mimeType]
}

// IsTextFile reports whether the MIME type or file extension is an allowed
// text format.
func IsTextFile(name, mimeType string) bool {
	if supportedTextTypes[mimeType] {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range supportedTextExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// NewImageAttachment validates and encodes an image file. Files above
// MaxImageBytes are rejected outright, never truncated.
func NewImageAttachment(name, mimeType string, data []byte) (Attachment, error) {
	if !IsImageMimeType(mimeType) {
		return Attachment{}, &UnsupportedAttachmentError{Name: name, Reason: fmt.Sprintf("mime type %s is not allowed", mimeType)}
	}
	if int64(len(data)) > MaxImageBytes {
		return Attachment{}, &UnsupportedAttachmentError{Name: name, Reason: fmt.Sprintf("image exceeds %d bytes", MaxImageBytes)}
	}
	return Attachment{
		ID:       GenerateID("att"),
		Type:     AttachmentImage,
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// NewTextAttachment validates a text file. Content beyond MaxTextChars is
// truncated to exactly the cap, not rejected.
func NewTextAttachment(name, mimeType, content string) (Attachment, error) {
	if !IsTextFile(name, mimeType) {
		return Attachment{}, &UnsupportedAttachmentError{Name: name, Reason: fmt.Sprintf("mime type %s is not allowed", mimeType)}
	}
	size := int64(len(content))
	content = TruncateText(content)
	return Attachment{
		ID:       GenerateID("att"),
		Type:     AttachmentText,
		Name:     name,
		Size:     size,
		MimeType: mimeType,
		Content:  content,
	}, nil
}

// TruncateText caps text content at MaxTextChars runes.
func TruncateText(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxTextChars {
		return content
	}
	return string(runes[:MaxTextChars])
}
