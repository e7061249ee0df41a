package domain

import "time"

// ContentType identifies what a content item holds
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentNote     ContentType = "note"
	ContentURL      ContentType = "url"
	ContentPDF      ContentType = "pdf"
	ContentImage    ContentType = "image"
	ContentVideoRef ContentType = "video_ref"
	ContentFile     ContentType = "file"
	ContentQuote    ContentType = "quote"
	ContentTable    ContentType = "table"
)

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentNote, ContentURL, ContentPDF, ContentImage,
		ContentVideoRef, ContentFile, ContentQuote, ContentTable:
		return true
	}
	return false
}

// Content is one ordered item inside a block
type Content struct {
	ID       string         `json:"id" yaml:"id"`
	BlockID  string         `json:"block_id" yaml:"block_id"`
	Type     ContentType    `json:"type" yaml:"type"`
	Body     string         `json:"body" yaml:"body"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Order    int            `json:"order" yaml:"order"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
