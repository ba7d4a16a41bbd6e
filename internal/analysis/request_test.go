package analysis_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediguard/internal/analysis"
	"mediguard/internal/domain"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     analysis.Request
		wantErr bool
	}{
		{"text only", analysis.Request{BillText: "CT scan $860 x2"}, false},
		{"file only", analysis.Request{File: &analysis.Upload{Data: []byte{1}}}, false},
		{"both", analysis.Request{BillText: "x", File: &analysis.Upload{Data: []byte{1}}}, false},
		{"neither", analysis.Request{}, true},
		{"blank text", analysis.Request{BillText: "  \n"}, true},
		{"empty file", analysis.Request{File: &analysis.Upload{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Equal(t, analysis.MsgBillMissing, err.Error())
		})
	}
}

func TestFormatInsurance(t *testing.T) {
	assert.Equal(t, "Not provided", analysis.FormatInsurance(""))
	assert.Equal(t, "Blue Cross", analysis.FormatInsurance("Blue Cross"))
}

func TestBuildCompletion_Text(t *testing.T) {
	req := analysis.BuildCompletion(&analysis.Request{
		BillText:          "CT scan $860 x2",
		InsuranceProvider: "Aetna",
		UserQuestion:      "  Why twice?  ",
	})

	assert.Equal(t, analysis.SystemPrompt, req.SystemPrompt)
	assert.Nil(t, req.Attachment)
	assert.InDelta(t, 0.2, req.Temperature, 0.0001)
	assert.Equal(t,
		"Here is the bill and my question.\n\nBill:\nCT scan $860 x2\n\nInsurance:\nAetna\n\nQuestion:\nWhy twice?",
		req.UserText)
}

func TestBuildCompletion_TextDefaults(t *testing.T) {
	req := analysis.BuildCompletion(&analysis.Request{BillText: "bill"})

	assert.Contains(t, req.UserText, "Insurance:\nNot provided")
	assert.Contains(t, req.UserText, "Question:\n"+analysis.DefaultQuestion)
}

func TestBuildCompletion_Image(t *testing.T) {
	req := analysis.BuildCompletion(&analysis.Request{
		BillText:     "ignored when a file is present",
		File:         &analysis.Upload{FileName: "bill.jpg", MIMEType: "image/jpeg", Data: []byte("abc")},
		UserQuestion: "Is the ER fee fair?",
	})

	require.NotNil(t, req.Attachment)
	assert.Equal(t, "data:image/jpeg;base64,YWJj", req.Attachment.DataURI())
	assert.Equal(t,
		analysis.ImageInstruction+"\nInsurance: Not provided\nUser question: Is the ER fee fair?",
		req.UserText)
	assert.NotContains(t, req.UserText, "ignored")
}

func TestBuildCompletion_ImageDefaultsMIME(t *testing.T) {
	req := analysis.BuildCompletion(&analysis.Request{
		File: &analysis.Upload{Data: []byte("abc")},
	})

	require.NotNil(t, req.Attachment)
	assert.Equal(t, "image/png", req.Attachment.MIMEType)
	assert.Equal(t, analysis.ImageInstruction+"\nInsurance: Not provided", req.UserText)
}

func TestResolveUploadType(t *testing.T) {
	pdf := []byte("%PDF-1.4 test content")
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
		ok       bool
	}{
		{"empty defaults to png", "", []byte("x"), "image/png", true},
		{"jpeg", "image/jpeg", nil, "image/jpeg", true},
		{"jpg alias", "image/jpg", nil, "image/jpeg", true},
		{"pdf", "application/pdf", nil, "application/pdf", true},
		{"case and params", "Image/PNG; charset=binary", nil, "image/png", true},
		{"octet-stream sniffed pdf", "application/octet-stream", pdf, "application/pdf", true},
		{"octet-stream sniffed png", "application/octet-stream", png, "image/png", true},
		{"octet-stream unknown", "application/octet-stream", []byte("hello"), "", false},
		{"text plain", "text/plain", []byte("hello"), "", false},
		{"zip", "application/zip", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := analysis.ResolveUploadType(tt.declared, tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
