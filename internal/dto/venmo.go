package dto

import (
	"github.com/GregMSThompson/patient-payments/internal/venmo"
)

// VenmoPaymentInput is a patient payment entered by hand or sent in a batch.
type VenmoPaymentInput struct {
	PatientName        string `json:"patientName"`
	MemberSubscriberID string `json:"memberSubscriberId"`
	Amount             Amount `json:"amount"`
	Date               string `json:"date"`
	Notes              string `json:"notes"`
}

// StatementPreview is returned after a statement upload so the operator can
// review the received payments and confirm the patient mappings.
type StatementPreview struct {
	Owner        string              `json:"owner"`
	PaymentRows  int                 `json:"paymentRows"`
	CompleteRows int                 `json:"completeRows"`
	Transactions []venmo.Transaction `json:"transactions"`
	Mappings     []venmo.Mapping     `json:"mappings"`
	Unmapped     int                 `json:"unmapped"`
}

// StatementImportRequest carries the reviewed transactions back with the
// operator's final mappings.
type StatementImportRequest struct {
	Transactions []venmo.Transaction `json:"transactions"`
	Mappings     []venmo.Mapping     `json:"mappings"`
}
