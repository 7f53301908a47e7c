package dto

import (
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/internal/reconcile"
)

type ReconciliationResponse struct {
	Records []reconcile.Record `json:"records"`
	Summary reconcile.Summary  `json:"summary"`
}

// CoveredInsurancePayment is an insurance line item with the share of it
// that patient payments cover.
type CoveredInsurancePayment struct {
	*models.InsurancePayment
	Coverage reconcile.Coverage `json:"coverage"`
}

type PatientDetail struct {
	PatientName        string                    `json:"patientName"`
	MemberSubscriberID string                    `json:"memberSubscriberId"`
	InsurancePayments  []CoveredInsurancePayment `json:"insurancePayments"`
	VenmoPayments      []*models.VenmoPayment    `json:"venmoPayments"`
	TotalInsurance     decimal.Decimal           `json:"totalInsurance"`
	TotalPaid          decimal.Decimal           `json:"totalPaid"`
	Balance            decimal.Decimal           `json:"balance"`
	Status             reconcile.Status          `json:"status"`
}

// Export formats for the reconciliation report.
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type IgnoredAddressesRequest struct {
	IgnoredAddresses []string `json:"ignoredAddresses"`
}
