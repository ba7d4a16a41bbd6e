package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediguard/internal/analysis"
	"mediguard/internal/domain"
	"mediguard/internal/middleware"
	"mediguard/internal/service"
)

const (
	formFieldImage     = "billImage"
	formFieldText      = "billText"
	formFieldQuestion  = "userQuestion"
	formFieldInsurance = "insuranceProvider"
)

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	Analysis  *domain.BillAnalysis `json:"analysis"`
	HistoryID *uuid.UUID           `json:"historyId,omitempty"`
	Guest     *service.GuestStatus `json:"guest,omitempty"`
}

// analyzeJSONBody keeps fields untyped so a wrong-typed billText is reported
// as missing rather than as a decoding failure.
type analyzeJSONBody struct {
	BillText          interface{} `json:"billText"`
	UserQuestion      interface{} `json:"userQuestion"`
	InsuranceProvider interface{} `json:"insuranceProvider"`
}

// AnalyzeHandler handles bill analysis.
type AnalyzeHandler struct {
	analysisService service.AnalysisService
	maxUploadBytes  int64
}

// NewAnalyzeHandler creates a new AnalyzeHandler. maxUploadMB bounds the request body.
func NewAnalyzeHandler(analysisService service.AnalysisService, maxUploadMB int64) *AnalyzeHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &AnalyzeHandler{analysisService: analysisService, maxUploadBytes: maxUploadMB << 20}
}

// Analyze handles POST /api/analyze-bill
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	if !h.analysisService.Configured() {
		HandleError(c, domain.ErrServerConfiguration)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var (
		req analysis.Request
		ok  bool
	)
	if strings.Contains(c.GetHeader("Content-Type"), "multipart/form-data") {
		req, ok = h.readForm(c)
	} else {
		req, ok = h.readJSON(c)
	}
	if !ok {
		return
	}

	out, err := h.analysisService.Analyze(c.Request.Context(), service.AnalyzeInput{
		Request: req,
		UserID:  middleware.OptionalUserID(c),
		GuestID: middleware.GetGuestID(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, AnalyzeResponse{Analysis: out.Analysis, HistoryID: out.RecordID, Guest: out.Guest})
}

func (h *AnalyzeHandler) readJSON(c *gin.Context) (analysis.Request, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if tooLarge(err) {
			RespondError(c, http.StatusRequestEntityTooLarge, "Request body is too large.")
			return analysis.Request{}, false
		}
		RespondError(c, http.StatusBadRequest, analysis.MsgInvalidJSON)
		return analysis.Request{}, false
	}
	// Unmarshal rejects trailing data after the object.
	var body analyzeJSONBody
	if err := json.Unmarshal(raw, &body); err != nil {
		RespondError(c, http.StatusBadRequest, analysis.MsgInvalidJSON)
		return analysis.Request{}, false
	}

	billText, _ := body.BillText.(string)
	if strings.TrimSpace(billText) == "" {
		RespondError(c, http.StatusBadRequest, analysis.MsgBillTextMissing)
		return analysis.Request{}, false
	}
	question, _ := body.UserQuestion.(string)
	insurance, _ := body.InsuranceProvider.(string)

	return analysis.Request{
		BillText:          billText,
		UserQuestion:      question,
		InsuranceProvider: insurance,
	}, true
}

func (h *AnalyzeHandler) readForm(c *gin.Context) (analysis.Request, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		if tooLarge(err) {
			RespondError(c, http.StatusRequestEntityTooLarge, "Bill file is too large.")
			return analysis.Request{}, false
		}
		RespondError(c, http.StatusBadRequest, analysis.MsgInvalidForm)
		return analysis.Request{}, false
	}

	req := analysis.Request{
		BillText:          firstValue(form, formFieldText),
		UserQuestion:      strings.TrimSpace(firstValue(form, formFieldQuestion)),
		InsuranceProvider: firstValue(form, formFieldInsurance),
	}

	if files := form.File[formFieldImage]; len(files) > 0 {
		upload, err := readUpload(files[0])
		if err != nil {
			RespondError(c, http.StatusBadRequest, analysis.MsgInvalidForm)
			return analysis.Request{}, false
		}
		req.File = upload
	}

	// Validation is left to the service so every entry point shares it.
	return req, true
}

// readUpload loads a multipart file. Unsupported types yield a nil upload,
// which the request treats as absent.
func readUpload(fh *multipart.FileHeader) (*analysis.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	mimeType, ok := analysis.ResolveUploadType(fh.Header.Get("Content-Type"), data)
	if !ok {
		return nil, nil
	}
	return &analysis.Upload{FileName: fh.Filename, MIMEType: mimeType, Data: data}, nil
}

func firstValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
