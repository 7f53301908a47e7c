package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/metrics"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/pkg/helpers"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

// insuranceStore is the storage interface for insurance payments. Get and
// Delete report a NotFoundError for records the user does not own.
type insuranceStore interface {
	List(ctx context.Context, uid string) ([]*models.InsurancePayment, error)
	Get(ctx context.Context, uid, id string) (*models.InsurancePayment, error)
	Create(ctx context.Context, uid string, p *models.InsurancePayment) error
	Update(ctx context.Context, uid string, p *models.InsurancePayment) error
	Delete(ctx context.Context, uid, id string) error
	DeleteMany(ctx context.Context, uid string, ids []string) error
}

type insuranceService struct {
	store   insuranceStore
	metrics *metrics.Metrics
}

func NewInsuranceService(store insuranceStore, m *metrics.Metrics) *insuranceService {
	return &insuranceService{store: store, metrics: m}
}

func (s *insuranceService) List(ctx context.Context, uid string) ([]*models.InsurancePayment, error) {
	return s.store.List(ctx, uid)
}

// Import creates or updates each row, matching existing payments by their
// natural key so re-importing the same remittance file is idempotent. Rows
// are validated up front; the first failing write stops the batch and the
// rows written before it stay written.
func (s *insuranceService) Import(ctx context.Context, uid string, rows []dto.InsurancePaymentInput) (dto.ImportResult, error) {
	log := logger.FromContext(ctx)
	result := dto.ImportResult{IDs: []string{}}

	incoming := make([]*models.InsurancePayment, 0, len(rows))
	for i, row := range rows {
		p, err := insuranceFromInput(row)
		if err != nil {
			return result, rowError(i, err)
		}
		incoming = append(incoming, p)
	}

	existing, err := s.store.List(ctx, uid)
	if err != nil {
		return result, err
	}
	byKey := make(map[string]*models.InsurancePayment, len(existing))
	for _, p := range existing {
		byKey[p.DedupKey()] = p
	}

	for _, p := range incoming {
		key := p.DedupKey()
		if cur, ok := byKey[key]; ok {
			cur.MergeFrom(p)
			if err := s.store.Update(ctx, uid, cur); err != nil {
				s.recordImport(result, 1)
				log.Error("insurance import aborted", "created", result.Created, "updated", result.Updated, "error", err)
				return result, err
			}
			result.Updated++
			result.IDs = append(result.IDs, cur.ID)
			continue
		}

		p.TrackingStatus = models.TrackingPending
		if err := s.store.Create(ctx, uid, p); err != nil {
			s.recordImport(result, 1)
			log.Error("insurance import aborted", "created", result.Created, "updated", result.Updated, "error", err)
			return result, err
		}
		byKey[key] = p
		result.Created++
		result.IDs = append(result.IDs, p.ID)
	}

	s.recordImport(result, 0)
	log.Info("insurance payments imported", "rows", len(rows), "created", result.Created, "updated", result.Updated)
	return result, nil
}

func (s *insuranceService) recordImport(r dto.ImportResult, failed int) {
	s.metrics.Imported("insurance", "created", r.Created)
	s.metrics.Imported("insurance", "updated", r.Updated)
	s.metrics.Imported("insurance", "failed", failed)
}

func (s *insuranceService) UpdateTrackingStatus(ctx context.Context, uid, id, status string) (*models.InsurancePayment, error) {
	ts, err := parseTrackingStatus(status)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	p.TrackingStatus = ts
	if err := s.store.Update(ctx, uid, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the non-nil fields of req to the payment.
func (s *insuranceService) Update(ctx context.Context, uid, id string, req dto.UpdateInsurancePaymentRequest) (*models.InsurancePayment, error) {
	p, err := s.store.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	setString(&p.ClaimStatus, req.ClaimStatus)
	setString(&p.DatesOfService, req.DatesOfService)
	setString(&p.MemberSubscriberID, req.MemberSubscriberID)
	setString(&p.ProviderName, req.ProviderName)
	setString(&p.ClaimNumber, req.ClaimNumber)
	setString(&p.CheckNumber, req.CheckNumber)
	setString(&p.PayeeName, req.PayeeName)
	setString(&p.PayeeAddress, req.PayeeAddress)
	if req.PaymentDate != nil {
		p.PaymentDate = helpers.NormalizeDate(*req.PaymentDate)
	}
	if req.CheckEFTAmount != nil {
		if !req.CheckEFTAmount.Set || req.CheckEFTAmount.Value.IsNegative() {
			return nil, errs.NewValidationError("checkEftAmount must be a non-negative amount")
		}
		p.CheckEFTAmount = req.CheckEFTAmount.Value
	}
	if req.TrackingStatus != nil {
		ts, err := parseTrackingStatus(*req.TrackingStatus)
		if err != nil {
			return nil, err
		}
		p.TrackingStatus = ts
	}
	if p.MemberSubscriberID == "" && p.PayeeName == "" {
		return nil, errs.NewMissingFieldError("memberSubscriberId or payeeName")
	}

	if err := s.store.Update(ctx, uid, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *insuranceService) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.store.Get(ctx, uid, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, uid, id)
}

// BulkDelete verifies that every id belongs to the user before deleting any.
func (s *insuranceService) BulkDelete(ctx context.Context, uid string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, errs.NewMissingFieldError("ids")
	}
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.store.Get(ctx, uid, id); err != nil {
			return 0, err
		}
		unique = append(unique, id)
	}
	if err := s.store.DeleteMany(ctx, uid, unique); err != nil {
		return 0, err
	}
	logger.FromContext(ctx).Info("insurance payments deleted", "count", len(unique))
	return len(unique), nil
}

func insuranceFromInput(in dto.InsurancePaymentInput) (*models.InsurancePayment, error) {
	p := &models.InsurancePayment{
		ClaimStatus:        strings.TrimSpace(in.ClaimStatus),
		DatesOfService:     strings.TrimSpace(in.DatesOfService),
		MemberSubscriberID: strings.TrimSpace(in.MemberSubscriberID),
		ProviderName:       strings.TrimSpace(in.ProviderName),
		PaymentDate:        helpers.NormalizeDate(in.PaymentDate),
		ClaimNumber:        strings.TrimSpace(in.ClaimNumber),
		CheckNumber:        strings.TrimSpace(in.CheckNumber),
		PayeeName:          strings.TrimSpace(in.PayeeName),
		PayeeAddress:       strings.TrimSpace(in.PayeeAddress),
	}
	if p.MemberSubscriberID == "" && p.PayeeName == "" {
		return nil, errs.NewMissingFieldError("memberSubscriberId or payeeName")
	}
	if !in.CheckEFTAmount.Set {
		return nil, errs.NewMissingFieldError("checkEftAmount")
	}
	if in.CheckEFTAmount.Value.IsNegative() {
		return nil, errs.NewValidationError("checkEftAmount must not be negative")
	}
	p.CheckEFTAmount = in.CheckEFTAmount.Value
	return p, nil
}

func parseTrackingStatus(raw string) (models.TrackingStatus, error) {
	ts := models.TrackingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !ts.Valid() {
		return "", errs.NewValidationError(fmt.Sprintf("trackingStatus must be one of PENDING, RECORDED, NOTIFIED, COLLECTED; got %q", raw))
	}
	return ts, nil
}

// rowError prefixes a validation error with the offending row number.
func rowError(i int, err error) error {
	if v, ok := err.(*errs.ValidationError); ok {
		return &errs.ValidationError{
			ErrorMessage: errs.ErrorMessage{Message: fmt.Sprintf("row %d: %s", i+1, v.Message)},
			Field:        v.Field,
		}
	}
	return err
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
