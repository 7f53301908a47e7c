package services

import (
	"context"
	"io"
	"strings"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/metrics"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/internal/venmo"
	"github.com/GregMSThompson/patient-payments/pkg/helpers"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type venmoStore interface {
	List(ctx context.Context, uid string) ([]*models.VenmoPayment, error)
	Get(ctx context.Context, uid, id string) (*models.VenmoPayment, error)
	Create(ctx context.Context, uid string, p *models.VenmoPayment) error
	Delete(ctx context.Context, uid, id string) error
}

// patientLister supplies the known patients that statement counterparties
// are matched against.
type patientLister interface {
	Patients(ctx context.Context, uid string) ([]venmo.Patient, error)
}

type venmoService struct {
	store    venmoStore
	patients patientLister
	metrics  *metrics.Metrics
}

func NewVenmoService(store venmoStore, patients patientLister, m *metrics.Metrics) *venmoService {
	return &venmoService{store: store, patients: patients, metrics: m}
}

func (s *venmoService) List(ctx context.Context, uid string) ([]*models.VenmoPayment, error) {
	return s.store.List(ctx, uid)
}

// Create records a manually entered patient payment.
func (s *venmoService) Create(ctx context.Context, uid string, in dto.VenmoPaymentInput) (*models.VenmoPayment, error) {
	p, err := venmoFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, uid, p); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("venmo payment created", "id", p.ID)
	return p, nil
}

// ImportBatch stores the given payments, skipping any already recorded.
func (s *venmoService) ImportBatch(ctx context.Context, uid string, rows []dto.VenmoPaymentInput) (dto.ImportResult, error) {
	incoming := make([]*models.VenmoPayment, 0, len(rows))
	for i, row := range rows {
		p, err := venmoFromInput(row)
		if err != nil {
			return dto.ImportResult{IDs: []string{}}, rowError(i, err)
		}
		incoming = append(incoming, p)
	}
	return s.createNew(ctx, uid, incoming)
}

// ParseStatement reads an uploaded statement and suggests a patient for each
// counterparty that received payments came from.
func (s *venmoService) ParseStatement(ctx context.Context, uid string, r io.Reader) (dto.StatementPreview, error) {
	log := logger.FromContext(ctx)

	st, err := venmo.Parse(r)
	if err != nil {
		s.metrics.StatementParsed(false)
		log.Warn("statement rejected", "error", err)
		return dto.StatementPreview{}, err
	}
	s.metrics.StatementParsed(true)

	patients, err := s.patients.Patients(ctx, uid)
	if err != nil {
		return dto.StatementPreview{}, err
	}
	mappings := venmo.AutoMap(venmo.Counterparties(st.Transactions), patients)

	unmapped := 0
	for _, m := range mappings {
		if !m.Mapped() {
			unmapped++
		}
	}
	log.Info("statement parsed", "owner", st.Owner, "received", len(st.Transactions), "counterparties", len(mappings), "unmapped", unmapped)

	return dto.StatementPreview{
		Owner:        st.Owner,
		PaymentRows:  st.PaymentRows,
		CompleteRows: st.CompleteRows,
		Transactions: st.Transactions,
		Mappings:     mappings,
		Unmapped:     unmapped,
	}, nil
}

// ImportStatement stores the reviewed transactions of mapped counterparties.
// A mapping flagged auto is only trusted when it matches the suggestion made
// from the user's own patients.
func (s *venmoService) ImportStatement(ctx context.Context, uid string, req dto.StatementImportRequest) (dto.ImportResult, error) {
	if len(req.Transactions) == 0 {
		return dto.ImportResult{IDs: []string{}}, errs.NewMissingFieldError("transactions")
	}

	patients, err := s.patients.Patients(ctx, uid)
	if err != nil {
		return dto.ImportResult{IDs: []string{}}, err
	}
	suggested := venmo.AutoMap(venmo.Counterparties(req.Transactions), patients)
	mappings := venmo.Confirm(req.Mappings, suggested)

	pending := venmo.Apply(req.Transactions, mappings)
	incoming := make([]*models.VenmoPayment, 0, len(pending))
	for _, p := range pending {
		if p.Amount.IsZero() {
			continue
		}
		incoming = append(incoming, &models.VenmoPayment{
			PatientName:        p.PatientName,
			MemberSubscriberID: p.MemberSubscriberID,
			Amount:             p.Amount,
			Date:               helpers.NormalizeDate(p.Date),
			Notes:              p.Notes,
			SourceID:           p.SourceID,
		})
	}
	return s.createNew(ctx, uid, incoming)
}

// createNew writes payments that are not already recorded. Entered payments
// are matched by count: a batch holding a payment twice over one stored copy
// creates the second. Statement payments are matched by transaction id. The
// first failing write stops the batch.
func (s *venmoService) createNew(ctx context.Context, uid string, incoming []*models.VenmoPayment) (dto.ImportResult, error) {
	log := logger.FromContext(ctx)
	result := dto.ImportResult{IDs: []string{}}

	existing, err := s.store.List(ctx, uid)
	if err != nil {
		return result, err
	}
	seen := make(map[string]int, len(existing))
	for _, p := range existing {
		seen[p.DedupKey()]++
	}

	for _, p := range incoming {
		key := p.DedupKey()
		if seen[key] > 0 {
			result.Skipped++
			if p.SourceID == "" {
				seen[key]--
			}
			continue
		}
		if err := s.store.Create(ctx, uid, p); err != nil {
			s.metrics.Imported("venmo", "created", result.Created)
			s.metrics.Imported("venmo", "failed", 1)
			log.Error("venmo import aborted", "created", result.Created, "error", err)
			return result, err
		}
		if p.SourceID != "" {
			seen[key]++
		}
		result.Created++
		result.IDs = append(result.IDs, p.ID)
	}

	s.metrics.Imported("venmo", "created", result.Created)
	s.metrics.Imported("venmo", "skipped", result.Skipped)
	log.Info("venmo payments imported", "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

func (s *venmoService) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.store.Get(ctx, uid, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, uid, id)
}

func venmoFromInput(in dto.VenmoPaymentInput) (*models.VenmoPayment, error) {
	p := &models.VenmoPayment{
		PatientName:        strings.TrimSpace(in.PatientName),
		MemberSubscriberID: strings.TrimSpace(in.MemberSubscriberID),
		Date:               helpers.NormalizeDate(in.Date),
		Notes:              strings.TrimSpace(in.Notes),
	}
	if p.PatientName == "" {
		return nil, errs.NewMissingFieldError("patientName")
	}
	if !in.Amount.Set {
		return nil, errs.NewMissingFieldError("amount")
	}
	if !in.Amount.Value.IsPositive() {
		return nil, errs.NewValidationError("amount must be greater than zero")
	}
	if p.Date == "" {
		return nil, errs.NewMissingFieldError("date")
	}
	p.Amount = in.Amount.Value
	return p, nil
}
