package services

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/internal/reconcile"
	"github.com/GregMSThompson/patient-payments/internal/venmo"
)

type paymentLister interface {
	List(ctx context.Context, uid string) ([]*models.InsurancePayment, error)
}

type venmoLister interface {
	List(ctx context.Context, uid string) ([]*models.VenmoPayment, error)
}

type settingsReader interface {
	Get(ctx context.Context, uid string) (*models.UserSetting, error)
}

type reconciliationService struct {
	insurance paymentLister
	venmo     venmoLister
	settings  settingsReader
}

func NewReconciliationService(insurance paymentLister, venmo venmoLister, settings settingsReader) *reconciliationService {
	return &reconciliationService{insurance: insurance, venmo: venmo, settings: settings}
}

// load returns the user's payments with insurance paid to ignored
// addresses removed.
func (s *reconciliationService) load(ctx context.Context, uid string) ([]*models.InsurancePayment, []*models.VenmoPayment, error) {
	ins, err := s.insurance.List(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	ven, err := s.venmo.List(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.settings.Get(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return reconcile.WithoutIgnoredAddresses(ins, st.IgnoredAddresses), ven, nil
}

func (s *reconciliationService) Summary(ctx context.Context, uid string) (dto.ReconciliationResponse, error) {
	ins, ven, err := s.load(ctx, uid)
	if err != nil {
		return dto.ReconciliationResponse{}, err
	}
	records := reconcile.Aggregate(ins, ven)
	return dto.ReconciliationResponse{
		Records: records,
		Summary: reconcile.Summarize(records),
	}, nil
}

// PatientDetail resolves a lookup token to one patient's payments, with the
// insurance line items newest first and marked by how much of each the
// patient payments cover.
func (s *reconciliationService) PatientDetail(ctx context.Context, uid, token string) (dto.PatientDetail, error) {
	lookup, err := reconcile.ParseLookupKey(token)
	if err != nil {
		return dto.PatientDetail{}, errs.NewValidationError("invalid patient key: " + err.Error())
	}

	ins, ven, err := s.load(ctx, uid)
	if err != nil {
		return dto.PatientDetail{}, err
	}
	ins, ven = lookup.Select(ins, ven)
	if len(ins) == 0 && len(ven) == 0 {
		return dto.PatientDetail{}, errs.NewNotFoundError("patient not found")
	}
	reconcile.SortNewestFirst(ins)

	totalIns, totalPaid := decimal.Zero, decimal.Zero
	amounts := make([]decimal.Decimal, len(ins))
	for i, p := range ins {
		amounts[i] = p.CheckEFTAmount
		totalIns = totalIns.Add(p.CheckEFTAmount)
	}
	for _, p := range ven {
		totalPaid = totalPaid.Add(p.Amount)
	}

	coverage := reconcile.Allocate(amounts, totalPaid)
	items := make([]dto.CoveredInsurancePayment, len(ins))
	for i, p := range ins {
		items[i] = dto.CoveredInsurancePayment{InsurancePayment: p, Coverage: coverage[i]}
	}

	name, memberID := lookup.Name, lookup.MemberID
	if len(ins) > 0 {
		name, memberID = firstNonEmpty(name, ins[0].PayeeName), firstNonEmpty(memberID, ins[0].MemberSubscriberID)
	} else {
		name, memberID = firstNonEmpty(name, ven[0].PatientName), firstNonEmpty(memberID, ven[0].MemberSubscriberID)
	}

	balance := totalIns.Sub(totalPaid)
	return dto.PatientDetail{
		PatientName:        name,
		MemberSubscriberID: memberID,
		InsurancePayments:  items,
		VenmoPayments:      ven,
		TotalInsurance:     totalIns,
		TotalPaid:          totalPaid,
		Balance:            balance,
		Status:             reconcile.StatusFor(balance),
	}, nil
}

// Patients lists every distinct patient seen in either payment stream,
// ordered by name.
func (s *reconciliationService) Patients(ctx context.Context, uid string) ([]venmo.Patient, error) {
	ins, ven, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	records := reconcile.Aggregate(ins, ven)
	out := make([]venmo.Patient, 0, len(records))
	for _, r := range records {
		if r.PatientName == "" {
			continue
		}
		out = append(out, venmo.Patient{Name: r.PatientName, MemberSubscriberID: r.MemberSubscriberID})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].MemberSubscriberID < out[j].MemberSubscriberID
	})
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
