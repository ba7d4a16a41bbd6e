package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"mediguard/internal/domain"
)

// Normalize validates the model's raw answer and repairs it into a BillAnalysis.
//
// summary (string), totalBilled (number) and items (array) are required; any
// other defect is repaired in place with the defaults below. issuesFound and
// potentialSavings are always recomputed from the repaired items.
func Normalize(raw string) (*domain.BillAnalysis, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, &domain.MalformedAnalysisError{Reason: "empty answer"}
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &domain.MalformedAnalysisError{Reason: "not a JSON object: " + err.Error()}
	}

	summary, ok := doc["summary"].(string)
	if !ok {
		return nil, &domain.MalformedAnalysisError{Field: "summary", Reason: "must be a string"}
	}
	totalBilled, ok := doc["totalBilled"].(float64)
	if !ok {
		return nil, &domain.MalformedAnalysisError{Field: "totalBilled", Reason: "must be a number"}
	}
	rawItems, ok := doc["items"].([]interface{})
	if !ok {
		return nil, &domain.MalformedAnalysisError{Field: "items", Reason: "must be an array"}
	}

	items := make([]domain.LineItem, 0, len(rawItems))
	for _, ri := range rawItems {
		obj, _ := ri.(map[string]interface{})
		items = append(items, RepairItem(obj))
	}

	return &domain.BillAnalysis{
		Summary:          summary,
		InsurancePlan:    optionalString(doc["insurancePlan"]),
		TotalBilled:      totalBilled,
		PotentialSavings: PotentialSavings(items),
		IssuesFound:      IssuesFound(items),
		Items:            items,
		DisputeLetter:    stringOrEmpty(doc["disputeLetter"]),
		QuestionAnswer:   optionalString(doc["questionAnswer"]),
	}, nil
}

// RepairItem builds a LineItem from a decoded JSON object, substituting the
// default for every missing or wrong-typed field. A nil map yields all defaults.
func RepairItem(obj map[string]interface{}) domain.LineItem {
	return domain.LineItem{
		CPTCode:                   repairCPTCode(obj["cptCode"]),
		Description:               stringOrEmpty(obj["description"]),
		Amount:                    repairAmount(obj["amount"]),
		Status:                    repairStatus(obj["status"]),
		Why:                       stringOrEmpty(obj["why"]),
		EstimatedReasonableAmount: optionalNumber(obj["estimatedReasonableAmount"]),
	}
}

// IssuesFound counts the items judged incorrect.
func IssuesFound(items []domain.LineItem) int {
	n := 0
	for i := range items {
		if items[i].Status == domain.LineItemIncorrect {
			n++
		}
	}
	return n
}

// PotentialSavings sums the positive overcharge of every incorrect item that
// has an estimate. The result is rounded to cents and never negative.
func PotentialSavings(items []domain.LineItem) float64 {
	var sum float64
	for i := range items {
		it := &items[i]
		if it.Status != domain.LineItemIncorrect || it.EstimatedReasonableAmount == nil {
			continue
		}
		if delta := it.Amount - *it.EstimatedReasonableAmount; delta > 0 {
			sum += delta
		}
	}
	return math.Round(sum*100) / 100
}

func repairCPTCode(v interface{}) string {
	switch c := v.(type) {
	case string:
		if c != "" {
			return c
		}
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	}
	return domain.UnknownCPTCode
}

func repairAmount(v interface{}) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}

func repairStatus(v interface{}) domain.LineItemStatus {
	if s, ok := v.(string); ok && domain.LineItemStatus(s).Valid() {
		return domain.LineItemStatus(s)
	}
	return domain.LineItemCorrect
}

func stringOrEmpty(v interface{}) string {
	s, _ := v.(string)
	return s
}

func optionalString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func optionalNumber(v interface{}) *float64 {
	if n, ok := v.(float64); ok {
		return &n
	}
	return nil
}

// stripCodeFence removes a surrounding ``` or ```json fence some models add
// despite being asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
