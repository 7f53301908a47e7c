package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VenmoPayment is an amount a patient paid directly.
type VenmoPayment struct {
	ID                 string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID             string          `gorm:"index;not null" json:"userId"`
	PatientName        string          `gorm:"not null" json:"patientName"`
	MemberSubscriberID string          `gorm:"index" json:"memberSubscriberId"`
	Amount             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date               string          `json:"date"` // YYYY-MM-DD
	Notes              string          `json:"notes,omitempty"`
	SourceID           string          `gorm:"index" json:"sourceId,omitempty"` // statement transaction id
	CreatedAt          time.Time       `json:"createdAt"`
}

// DedupKey identifies the same payment across repeated imports. Payments
// taken from a statement are keyed by their transaction id; entered ones by
// patient, date, amount and note, so two identical entered payments share a key.
func (p *VenmoPayment) DedupKey() string {
	if id := strings.TrimSpace(p.SourceID); id != "" {
		return "venmo:" + id
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(p.MemberSubscriberID)),
		strings.Join(strings.Fields(strings.ToLower(p.PatientName)), " "),
		strings.TrimSpace(p.Date),
		p.Amount.StringFixed(2),
		strings.TrimSpace(p.Notes),
	}, "|")
}
