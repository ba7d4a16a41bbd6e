package port

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Attachment is a binary document sent alongside the user message.
type Attachment struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the attachment bytes.
func (a *Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURI returns the attachment as a data: URI.
func (a *Attachment) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, a.Base64())
}

// CompletionRequest is a single-turn chat completion: one system message
// and one user message, optionally carrying an attachment.
type CompletionRequest struct {
	SystemPrompt string
	UserText     string
	Attachment   *Attachment
	Temperature  float32
}

// CompletionClient abstracts the chat-completion provider. Implementations
// make exactly one outbound call per Complete and never retry.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
