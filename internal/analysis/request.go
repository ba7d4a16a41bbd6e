package analysis

import (
	"mime"
	"net/http"
	"strings"

	"mediguard/internal/domain"
	"mediguard/internal/port"
)

// Caller-facing messages for rejected input.
const (
	MsgInvalidJSON     = "Invalid JSON body."
	MsgInvalidForm     = "Invalid form data."
	MsgBillTextMissing = "billText is required."
	MsgBillMissing     = "Please upload a bill image/PDF or paste the bill text."
)

// Upload is a bill file received from the caller.
type Upload struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Request is a validated-or-not analysis request, independent of transport.
type Request struct {
	BillText          string
	File              *Upload
	UserQuestion      string
	InsuranceProvider string
}

// HasFile reports whether the request carries a usable upload.
func (r *Request) HasFile() bool {
	return r.File != nil && len(r.File.Data) > 0
}

// HasText reports whether the request carries non-blank bill text.
func (r *Request) HasText() bool {
	return strings.TrimSpace(r.BillText) != ""
}

// Validate checks that the request has something to analyze.
// When both a file and text are present the file is analyzed.
func (r *Request) Validate() error {
	if !r.HasFile() && !r.HasText() {
		return domain.NewInputError(MsgBillMissing)
	}
	return nil
}

// FormatInsurance returns the insurance label sent to the model.
func FormatInsurance(provider string) string {
	if provider == "" {
		return InsuranceNotProvided
	}
	return provider
}

// ResolveUploadType decides the MIME type of an upload. An empty declared type
// defaults to image/png; application/octet-stream is sniffed from the bytes.
// The second result is false when the type is not accepted.
func ResolveUploadType(declared string, data []byte) (string, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if mediaType != "" {
		if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
			mediaType = parsed
		}
	}

	switch mediaType {
	case "":
		return domain.DefaultUploadMIMEType, true
	case "application/octet-stream":
		sniffed := http.DetectContentType(data)
		if parsed, _, err := mime.ParseMediaType(sniffed); err == nil {
			sniffed = parsed
		}
		if domain.AllowedUploadTypes[sniffed] {
			return sniffed, true
		}
		return "", false
	case "image/jpg":
		return "image/jpeg", true
	}

	if domain.AllowedUploadTypes[mediaType] {
		return mediaType, true
	}
	return "", false
}

// BuildCompletion assembles the outbound chat-completion request.
func BuildCompletion(r *Request) port.CompletionRequest {
	insurance := FormatInsurance(r.InsuranceProvider)
	question := strings.TrimSpace(r.UserQuestion)

	if r.HasFile() {
		mimeType := r.File.MIMEType
		if mimeType == "" {
			mimeType = domain.DefaultUploadMIMEType
		}
		return port.CompletionRequest{
			SystemPrompt: SystemPrompt,
			UserText:     buildImageInstruction(insurance, question),
			Attachment: &port.Attachment{
				FileName: r.File.FileName,
				MIMEType: mimeType,
				Data:     r.File.Data,
			},
			Temperature: Temperature,
		}
	}

	return port.CompletionRequest{
		SystemPrompt: SystemPrompt,
		UserText:     buildTextMessage(r.BillText, insurance, question),
		Temperature:  Temperature,
	}
}

func buildTextMessage(billText, insurance, question string) string {
	if question == "" {
		question = DefaultQuestion
	}
	var b strings.Builder
	b.WriteString("Here is the bill and my question.\n\nBill:\n")
	b.WriteString(billText)
	b.WriteString("\n\nInsurance:\n")
	b.WriteString(insurance)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}

func buildImageInstruction(insurance, question string) string {
	text := ImageInstruction
	if insurance != "" {
		text += "\nInsurance: " + insurance
	}
	if question != "" {
		text += "\nUser question: " + question
	}
	return text
}
