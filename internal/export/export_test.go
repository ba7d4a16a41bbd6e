package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mediguard/internal/domain"
)

func sampleRecord(t *testing.T) domain.HistoryRecord {
	t.Helper()
	est := 430.0
	a := domain.BillAnalysis{
		Summary:          "Duplicate CT scan",
		TotalBilled:      1720,
		PotentialSavings: 430,
		IssuesFound:      1,
		Items: []domain.LineItem{
			{CPTCode: "74177", Description: "CT abdomen", Amount: 860, Status: domain.LineItemCorrect},
			{CPTCode: "74177", Description: "CT abdomen (duplicate)", Amount: 860, Status: domain.LineItemIncorrect, EstimatedReasonableAmount: &est, Why: "Billed twice."},
		},
	}
	blob, err := json.Marshal(a)
	require.NoError(t, err)

	title, provider := "Aetna bill - Mar 1, 2026", "Aetna"
	total, savings, issues := 1720.0, 430.0, 1
	return domain.HistoryRecord{
		ID:                uuid.New(),
		BillTitle:         &title,
		InsuranceProvider: &provider,
		TotalBilled:       &total,
		PotentialSavings:  &savings,
		IssuesFound:       &issues,
		AIResult:          blob,
		CreatedAt:         time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []domain.HistoryRecord{sampleRecord(t)}))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Len(t, rows[0], 8)
	assert.Equal(t, "Bill Title", rows[0][0])
	assert.Equal(t, "Created At", rows[0][7])

	assert.Equal(t, []string{
		"Aetna bill - Mar 1, 2026",
		"Aetna",
		"1720.00",
		"430.00",
		"1",
		"Duplicate CT scan",
		"74177 CT abdomen (duplicate)",
		"2026-03-01T09:30:00Z",
	}, rows[1])
}

func TestRecordToRow_MissingFields(t *testing.T) {
	rec := domain.HistoryRecord{CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	row := recordToRow(&rec)

	assert.Len(t, row, 8)
	for i := 0; i < 7; i++ {
		assert.Empty(t, row[i], "column %d", i)
	}
	assert.Equal(t, "2026-01-02T00:00:00Z", row[7])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []domain.HistoryRecord{sampleRecord(t)}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Analyses", "Line Items"}, f.GetSheetList())

	summary, err := f.GetRows("Analyses")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Bill Title", summary[0][0])
	assert.Equal(t, "Aetna bill - Mar 1, 2026", summary[1][0])
	assert.Equal(t, "1720", summary[1][2])
	assert.Equal(t, "Duplicate CT scan", summary[1][5])

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "CPT Code", items[0][1])
	assert.Equal(t, "incorrect", items[2][4])
	assert.Equal(t, "430", items[2][5])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My_Bills_2026", SanitizeFilename("My Bills (2026)"))
	assert.Equal(t, "a-b_c", SanitizeFilename("__a-b  c__"))
	assert.Len(t, SanitizeFilename(string(bytes.Repeat([]byte("x"), 150))), 100)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "mediguard_history_2026-03-01.csv", BuildFilename("mediguard history", domain.ExportCSV, now))
	assert.Equal(t, "mediguard_history_2026-03-01.xlsx", BuildFilename("mediguard history", domain.ExportXLSX, now))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(domain.ExportCSV))
	assert.Contains(t, ContentType(domain.ExportXLSX), "spreadsheetml")
}
