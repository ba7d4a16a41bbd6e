package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LineItem is one billed charge as judged by the analysis model.
type LineItem struct {
	CPTCode                   string         `json:"cptCode"`
	Description               string         `json:"description"`
	Amount                    float64        `json:"amount"`
	Status                    LineItemStatus `json:"status"`
	Why                       string         `json:"why"`
	EstimatedReasonableAmount *float64       `json:"estimatedReasonableAmount"`
}

// BillAnalysis is the normalized result of a bill analysis.
// IssuesFound and PotentialSavings are always derived from Items.
type BillAnalysis struct {
	Summary          string     `json:"summary"`
	InsurancePlan    *string    `json:"insurancePlan"`
	TotalBilled      float64    `json:"totalBilled"`
	PotentialSavings float64    `json:"potentialSavings"`
	IssuesFound      int        `json:"issuesFound"`
	Items            []LineItem `json:"items"`
	DisputeLetter    string     `json:"disputeLetter"`
	QuestionAnswer   *string    `json:"questionAnswer"`
}

// User is an account holder.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile holds user-editable account details, keyed by user id.
type Profile struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FullName    *string   `db:"full_name" json:"full_name"`
	EmailAlerts bool      `db:"email_alerts" json:"email_alerts"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HistoryRecord is a saved analysis. The analysis itself is stored as an
// opaque JSON blob; the summary columns are denormalized copies for listing.
type HistoryRecord struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	UserID            uuid.UUID       `db:"user_id" json:"user_id"`
	BillTitle         *string         `db:"bill_title" json:"bill_title"`
	InsuranceProvider *string         `db:"insurance_provider" json:"insurance_provider"`
	TotalBilled       *float64        `db:"total_billed" json:"total_billed"`
	PotentialSavings  *float64        `db:"potential_savings" json:"potential_savings"`
	IssuesFound       *int            `db:"issues_found" json:"issues_found"`
	AIResult          json.RawMessage `db:"ai_result" json:"ai_result"`
	SourceObjectKey   *string         `db:"source_object_key" json:"-"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// Analysis decodes the stored blob. Returns nil for empty or undecodable rows.
func (r *HistoryRecord) Analysis() *BillAnalysis {
	if len(r.AIResult) == 0 || string(r.AIResult) == "null" {
		return nil
	}
	var a BillAnalysis
	if err := json.Unmarshal(r.AIResult, &a); err != nil {
		return nil
	}
	return &a
}

// GuestUsage is the persisted form of a guest's rolling analysis counter.
type GuestUsage struct {
	GuestID      string    `db:"guest_id" json:"guest_id"`
	WindowStart  time.Time `db:"window_start" json:"window_start"`
	AnalysesUsed int       `db:"analyses_used" json:"analyses_used"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
