package reconcile

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/models"
)

type Status string

const (
	StatusPaidInFull  Status = "Paid in Full"
	StatusOutstanding Status = "Outstanding"
	StatusOverpaid    Status = "Overpaid"
)

func StatusFor(balance decimal.Decimal) Status {
	switch balance.Sign() {
	case 0:
		return StatusPaidInFull
	case 1:
		return StatusOutstanding
	default:
		return StatusOverpaid
	}
}

// Record is the per-patient reconciliation of insurance received against
// what the patient paid.
type Record struct {
	Key                Key             `json:"key"`
	LookupToken        string          `json:"lookupToken"`
	PatientName        string          `json:"patientName"`
	MemberSubscriberID string          `json:"memberSubscriberId"`
	TotalInsurance     decimal.Decimal `json:"totalInsurance"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	Balance            decimal.Decimal `json:"balance"`
	InsuranceCount     int             `json:"insuranceCount"`
	VenmoCount         int             `json:"venmoCount"`
	Status             Status          `json:"status"`
}

// Aggregate builds one record per distinct patient key. A patient with only
// Venmo payments still gets a record, with zero insurance.
func Aggregate(insurance []*models.InsurancePayment, venmo []*models.VenmoPayment) []Record {
	groups := map[Key]*Record{}
	var order []Key

	group := func(memberID, name string) *Record {
		key := PatientKey(memberID, name)
		rec, ok := groups[key]
		if !ok {
			rec = &Record{
				Key:                key,
				PatientName:        strings.TrimSpace(name),
				MemberSubscriberID: strings.TrimSpace(memberID),
				TotalInsurance:     decimal.Zero,
				TotalPaid:          decimal.Zero,
			}
			groups[key] = rec
			order = append(order, key)
		}
		if rec.PatientName == "" {
			rec.PatientName = strings.TrimSpace(name)
		}
		return rec
	}

	for _, p := range insurance {
		rec := group(p.MemberSubscriberID, p.PayeeName)
		rec.TotalInsurance = rec.TotalInsurance.Add(p.CheckEFTAmount)
		rec.InsuranceCount++
	}
	for _, p := range venmo {
		rec := group(p.MemberSubscriberID, p.PatientName)
		rec.TotalPaid = rec.TotalPaid.Add(p.Amount)
		rec.VenmoCount++
	}

	out := make([]Record, 0, len(order))
	for _, key := range order {
		rec := groups[key]
		rec.Balance = rec.TotalInsurance.Sub(rec.TotalPaid)
		rec.Status = StatusFor(rec.Balance)
		rec.LookupToken = Lookup{MemberID: rec.MemberSubscriberID, Name: rec.PatientName}.Token()
		out = append(out, *rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Balance.Cmp(out[j].Balance); c != 0 {
			return c > 0
		}
		return strings.ToLower(out[i].PatientName) < strings.ToLower(out[j].PatientName)
	})
	return out
}

type Summary struct {
	Patients         int             `json:"patients"`
	OutstandingCount int             `json:"outstandingCount"`
	OutstandingTotal decimal.Decimal `json:"outstandingTotal"`
	PaidInFullCount  int             `json:"paidInFullCount"`
	OverpaidCount    int             `json:"overpaidCount"`
	OverpaidTotal    decimal.Decimal `json:"overpaidTotal"` // reported as a positive amount
	TotalInsurance   decimal.Decimal `json:"totalInsurance"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
}

func Summarize(records []Record) Summary {
	s := Summary{
		Patients:         len(records),
		OutstandingTotal: decimal.Zero,
		OverpaidTotal:    decimal.Zero,
		TotalInsurance:   decimal.Zero,
		TotalPaid:        decimal.Zero,
	}
	for _, r := range records {
		s.TotalInsurance = s.TotalInsurance.Add(r.TotalInsurance)
		s.TotalPaid = s.TotalPaid.Add(r.TotalPaid)
		switch r.Status {
		case StatusOutstanding:
			s.OutstandingCount++
			s.OutstandingTotal = s.OutstandingTotal.Add(r.Balance)
		case StatusOverpaid:
			s.OverpaidCount++
			s.OverpaidTotal = s.OverpaidTotal.Add(r.Balance.Neg())
		default:
			s.PaidInFullCount++
		}
	}
	return s
}

// WithoutIgnoredAddresses drops remittances addressed to any of the ignored
// payee addresses (typically the practice's own address).
func WithoutIgnoredAddresses(insurance []*models.InsurancePayment, ignored []string) []*models.InsurancePayment {
	if len(ignored) == 0 {
		return insurance
	}
	skip := make(map[string]struct{}, len(ignored))
	for _, a := range ignored {
		if n := normalizeAddress(a); n != "" {
			skip[n] = struct{}{}
		}
	}
	out := make([]*models.InsurancePayment, 0, len(insurance))
	for _, p := range insurance {
		if _, ok := skip[normalizeAddress(p.PayeeAddress)]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

func normalizeAddress(a string) string {
	return strings.Join(strings.Fields(strings.ToLower(a)), " ")
}
