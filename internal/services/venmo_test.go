package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/venmo"
	"github.com/GregMSThompson/patient-payments/pkg/helpers"
)

type stubPatients struct {
	patients []venmo.Patient
	err      error
}

func (s *stubPatients) Patients(_ context.Context, _ string) ([]venmo.Patient, error) {
	return s.patients, s.err
}

const statementCSV = "Account Statement\n" +
	"ID,Datetime,Type,Status,Note,From,To,Amount (total)\n" +
	"1,2024-01-15T10:00:00,Payment,Complete,session,Alice Jones,Dr Owner,$25.00\n" +
	"2,2024-01-16T10:00:00,Payment,Complete,copay,Bob Stone,Dr Owner,$40.00\n" +
	"3,2024-01-17T10:00:00,Payment,Complete,rent,Dr Owner,Landlord,- $900.00\n" +
	"Total:,,,,,,,\n"

func TestVenmoCreateValidation(t *testing.T) {
	svc := NewVenmoService(newFakeVenmoStore(), &stubPatients{}, nil)
	ctx := helpers.TestCtx()

	tests := []struct {
		name string
		in   dto.VenmoPaymentInput
	}{
		{"NoName", dto.VenmoPaymentInput{Amount: amt("5"), Date: "2024-01-01"}},
		{"NoAmount", dto.VenmoPaymentInput{PatientName: "A", Date: "2024-01-01"}},
		{"ZeroAmount", dto.VenmoPaymentInput{PatientName: "A", Amount: amt("0"), Date: "2024-01-01"}},
		{"NoDate", dto.VenmoPaymentInput{PatientName: "A", Amount: amt("5")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", tt.in)
			var verr *errs.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	p, err := svc.Create(ctx, "u1", dto.VenmoPaymentInput{PatientName: " Alice ", Amount: amt("25"), Date: "1/15/2024"})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if p.PatientName != "Alice" || p.Date != "2024-01-15" {
		t.Fatalf("unexpected payment: %+v", p)
	}
}

func TestVenmoImportBatchMatchesByCount(t *testing.T) {
	store := newFakeVenmoStore()
	svc := NewVenmoService(store, &stubPatients{}, nil)
	ctx := helpers.TestCtx()

	// two real copays of the same amount on the same day
	rows := []dto.VenmoPaymentInput{
		{PatientName: "Alice", MemberSubscriberID: "M1", Amount: amt("25"), Date: "2024-01-15", Notes: "copay"},
		{PatientName: "Alice", MemberSubscriberID: "M1", Amount: amt("25.00"), Date: "2024-01-15", Notes: "copay"},
		{PatientName: "Bob", Amount: amt("10"), Date: "2024-01-16"},
	}
	res, err := svc.ImportBatch(ctx, "u1", rows)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.Created != 3 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}

	res, err = svc.ImportBatch(ctx, "u1", rows)
	if err != nil {
		t.Fatalf("second import error: %v", err)
	}
	if res.Created != 0 || res.Skipped != 3 {
		t.Fatalf("second result = %+v", res)
	}

	res, err = svc.ImportBatch(ctx, "u1", append(rows, rows[0]))
	if err != nil {
		t.Fatalf("third import error: %v", err)
	}
	if res.Created != 1 || res.Skipped != 3 || len(store.items) != 4 {
		t.Fatalf("third result = %+v, stored %d", res, len(store.items))
	}
}

func TestVenmoParseStatementSuggestsMappings(t *testing.T) {
	patients := &stubPatients{patients: []venmo.Patient{{Name: "Alice Jones", MemberSubscriberID: "M1"}}}
	svc := NewVenmoService(newFakeVenmoStore(), patients, nil)

	preview, err := svc.ParseStatement(helpers.TestCtx(), "u1", strings.NewReader(statementCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if preview.Owner != "Dr Owner" {
		t.Fatalf("owner = %q", preview.Owner)
	}
	if len(preview.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(preview.Transactions))
	}
	if len(preview.Mappings) != 2 || preview.Unmapped != 1 {
		t.Fatalf("mappings = %+v unmapped = %d", preview.Mappings, preview.Unmapped)
	}
	if m := preview.Mappings[0]; m.Counterparty != "Alice Jones" || m.MemberSubscriberID != "M1" || !m.Auto {
		t.Fatalf("unexpected mapping: %+v", m)
	}
}

func TestVenmoParseStatementRejectsWrongFile(t *testing.T) {
	svc := NewVenmoService(newFakeVenmoStore(), &stubPatients{}, nil)

	_, err := svc.ParseStatement(helpers.TestCtx(), "u1", strings.NewReader("name,amount\nA,1\n"))
	var perr *errs.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestVenmoImportStatementOnlyMapped(t *testing.T) {
	store := newFakeVenmoStore()
	svc := NewVenmoService(store, &stubPatients{}, nil)
	ctx := helpers.TestCtx()

	req := dto.StatementImportRequest{
		Transactions: []venmo.Transaction{
			{Counterparty: "Alice Jones", Amount: decimal.RequireFromString("25"), Date: "2024-01-15", Note: "session"},
			{Counterparty: "Bob Stone", Amount: decimal.RequireFromString("40"), Date: "2024-01-16"},
			{Counterparty: "Carol", Amount: decimal.RequireFromString("15"), Date: "2024-01-17"},
		},
		Mappings: []venmo.Mapping{
			{Counterparty: "Alice Jones", PatientName: "Alice Jones", MemberSubscriberID: "M1", Auto: true},
			{Counterparty: "Bob Stone"},
			{Counterparty: "Carol", PatientName: "Carol King", MemberSubscriberID: "M9"},
		},
	}

	res, err := svc.ImportStatement(ctx, "u1", req)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("created = %d, want 2", res.Created)
	}
	for _, p := range store.items {
		if p.PatientName == "Bob Stone" {
			t.Fatalf("unmapped counterparty was imported")
		}
	}

	res, err = svc.ImportStatement(ctx, "u1", req)
	if err != nil {
		t.Fatalf("second import error: %v", err)
	}
	if res.Created != 0 || res.Skipped != 2 {
		t.Fatalf("re-import should skip everything, got %+v", res)
	}
}

func TestVenmoImportStatementKeepsSameDayPayments(t *testing.T) {
	store := newFakeVenmoStore()
	svc := NewVenmoService(store, &stubPatients{}, nil)
	ctx := helpers.TestCtx()

	csv := "ID,Datetime,Type,Status,Note,From,To,Amount (total)\n" +
		"101,2024-01-15T09:00:00,Payment,Complete,copay,Alice Jones,Dr Owner,$25.00\n" +
		"102,2024-01-15T17:00:00,Payment,Complete,copay,Alice Jones,Dr Owner,$25.00\n"
	st, err := venmo.ParseString(csv)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	req := dto.StatementImportRequest{
		Transactions: st.Transactions,
		Mappings:     []venmo.Mapping{{Counterparty: "Alice Jones", PatientName: "Alice Jones", MemberSubscriberID: "M1"}},
	}

	res, err := svc.ImportStatement(ctx, "u1", req)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.Created != 2 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}
	sources := map[string]bool{}
	for _, p := range store.items {
		sources[p.SourceID] = true
	}
	if !sources["101"] || !sources["102"] {
		t.Fatalf("source ids not stored: %v", sources)
	}

	res, err = svc.ImportStatement(ctx, "u1", req)
	if err != nil {
		t.Fatalf("second import error: %v", err)
	}
	if res.Created != 0 || res.Skipped != 2 {
		t.Fatalf("re-import should skip both, got %+v", res)
	}
}

func TestVenmoImportStatementChecksAutoMappings(t *testing.T) {
	patients := &stubPatients{patients: []venmo.Patient{{Name: "Alice Jones", MemberSubscriberID: "M1"}, {Name: "Carol King"}}}
	store := newFakeVenmoStore()
	svc := NewVenmoService(store, patients, nil)

	req := dto.StatementImportRequest{
		Transactions: []venmo.Transaction{
			{ID: "1", Counterparty: "Alice Jones", Amount: decimal.RequireFromString("25"), Date: "2024-01-15"},
			{ID: "2", Counterparty: "Stranger", Amount: decimal.RequireFromString("40"), Date: "2024-01-16"},
			{ID: "3", Counterparty: "Bob Stone", Amount: decimal.RequireFromString("15"), Date: "2024-01-17"},
			{ID: "4", Counterparty: "Carol King", Amount: decimal.RequireFromString("30"), Date: "2024-01-18"},
		},
		Mappings: []venmo.Mapping{
			{Counterparty: "Alice Jones", PatientName: "Alice Jones", MemberSubscriberID: "M1", Auto: true},
			{Counterparty: "Stranger", PatientName: "Anybody", Auto: true},
			{Counterparty: "Bob Stone", PatientName: "Alice Jones", Auto: true},
			{Counterparty: "Carol King", PatientName: "Carol King", Auto: true},
		},
	}

	res, err := svc.ImportStatement(helpers.TestCtx(), "u1", req)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("created = %d, want only the suggested mappings", res.Created)
	}
	for _, p := range store.items {
		if p.SourceID != "1" && p.SourceID != "4" {
			t.Fatalf("unconfirmed auto mapping was imported: %+v", p)
		}
	}
}

func TestVenmoImportStatementPatientsError(t *testing.T) {
	boom := errs.NewDatabaseError("read", "failed", errors.New("down"))
	store := newFakeVenmoStore()
	svc := NewVenmoService(store, &stubPatients{err: boom}, nil)

	req := dto.StatementImportRequest{
		Transactions: []venmo.Transaction{{ID: "1", Counterparty: "A", Amount: decimal.RequireFromString("5"), Date: "2024-01-15"}},
		Mappings:     []venmo.Mapping{{Counterparty: "A", PatientName: "A", MemberSubscriberID: "M"}},
	}
	if _, err := svc.ImportStatement(helpers.TestCtx(), "u1", req); !errors.Is(err, boom) {
		t.Fatalf("expected patients error, got %v", err)
	}
	if len(store.items) != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestVenmoImportStatementRequiresTransactions(t *testing.T) {
	svc := NewVenmoService(newFakeVenmoStore(), &stubPatients{}, nil)
	_, err := svc.ImportStatement(helpers.TestCtx(), "u1", dto.StatementImportRequest{})
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestVenmoDeleteNotOwned(t *testing.T) {
	store := newFakeVenmoStore()
	svc := NewVenmoService(store, &stubPatients{}, nil)
	ctx := helpers.TestCtx()

	p, _ := svc.Create(ctx, "u1", dto.VenmoPaymentInput{PatientName: "A", Amount: amt("5"), Date: "2024-01-01"})
	var nf *errs.NotFoundError
	if err := svc.Delete(ctx, "u2", p.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", p.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
}
