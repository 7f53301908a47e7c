package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TrackingStatus is the internal workflow stage of an insurance payment.
type TrackingStatus string

const (
	TrackingPending   TrackingStatus = "PENDING"
	TrackingRecorded  TrackingStatus = "RECORDED"
	TrackingNotified  TrackingStatus = "NOTIFIED"
	TrackingCollected TrackingStatus = "COLLECTED"
)

func (s TrackingStatus) Valid() bool {
	switch s {
	case TrackingPending, TrackingRecorded, TrackingNotified, TrackingCollected:
		return true
	default:
		return false
	}
}

// InsurancePayment is a payer-issued remittance line owned by one user.
type InsurancePayment struct {
	ID                 string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID             string          `gorm:"index;not null" json:"userId"`
	ClaimStatus        string          `json:"claimStatus,omitempty"`
	DatesOfService     string          `json:"datesOfService,omitempty"`
	MemberSubscriberID string          `gorm:"index" json:"memberSubscriberId"`
	ProviderName       string          `json:"providerName,omitempty"`
	PaymentDate        string          `json:"paymentDate,omitempty"` // YYYY-MM-DD when parseable
	ClaimNumber        string          `json:"claimNumber,omitempty"`
	CheckNumber        string          `json:"checkNumber,omitempty"`
	CheckEFTAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"checkEftAmount"`
	PayeeName          string          `json:"payeeName"`
	PayeeAddress       string          `json:"payeeAddress,omitempty"`
	TrackingStatus     TrackingStatus  `gorm:"type:varchar(16);not null;default:PENDING" json:"trackingStatus"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// DedupKey is the composite natural key used to recognise a remittance line
// that was already imported.
func (p *InsurancePayment) DedupKey() string {
	parts := []string{
		strings.Join(strings.Fields(strings.ToLower(p.PayeeName)), " "),
		strings.ToLower(strings.TrimSpace(p.MemberSubscriberID)),
		strings.ToLower(strings.TrimSpace(p.DatesOfService)),
		strings.ToLower(strings.TrimSpace(p.CheckNumber)),
		strings.TrimSpace(p.PaymentDate),
	}
	return strings.Join(parts, "|")
}

// MergeFrom copies the imported fields of src onto p, keeping identity,
// ownership and the tracking workflow stage.
func (p *InsurancePayment) MergeFrom(src *InsurancePayment) {
	p.ClaimStatus = src.ClaimStatus
	p.DatesOfService = src.DatesOfService
	p.MemberSubscriberID = src.MemberSubscriberID
	p.ProviderName = src.ProviderName
	p.PaymentDate = src.PaymentDate
	p.ClaimNumber = src.ClaimNumber
	p.CheckNumber = src.CheckNumber
	p.CheckEFTAmount = src.CheckEFTAmount
	p.PayeeName = src.PayeeName
	p.PayeeAddress = src.PayeeAddress
}
