package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

type stubInsuranceService struct {
	uid, id, status string
	rows            []dto.InsurancePaymentInput
	update          dto.UpdateInsurancePaymentRequest
	ids             []string
	importResult    dto.ImportResult
	err             error
}

func (s *stubInsuranceService) List(_ context.Context, uid string) ([]*models.InsurancePayment, error) {
	s.uid = uid
	return []*models.InsurancePayment{{ID: "p1"}}, s.err
}

func (s *stubInsuranceService) Import(_ context.Context, uid string, rows []dto.InsurancePaymentInput) (dto.ImportResult, error) {
	s.uid = uid
	s.rows = rows
	return s.importResult, s.err
}

func (s *stubInsuranceService) UpdateTrackingStatus(_ context.Context, uid, id, status string) (*models.InsurancePayment, error) {
	s.uid, s.id, s.status = uid, id, status
	return &models.InsurancePayment{ID: id}, s.err
}

func (s *stubInsuranceService) Update(_ context.Context, uid, id string, req dto.UpdateInsurancePaymentRequest) (*models.InsurancePayment, error) {
	s.uid, s.id, s.update = uid, id, req
	return &models.InsurancePayment{ID: id}, s.err
}

func (s *stubInsuranceService) Delete(_ context.Context, uid, id string) error {
	s.uid, s.id = uid, id
	return s.err
}

func (s *stubInsuranceService) BulkDelete(_ context.Context, uid string, ids []string) (int, error) {
	s.uid, s.ids = uid, ids
	return len(ids), s.err
}

func newInsuranceTest() (*stubInsuranceService, *stubResponseHandler, http.Handler) {
	svc := &stubInsuranceService{}
	resp := &stubResponseHandler{}
	h := NewInsuranceHandlers(&Deps{ResponseHandler: resp, InsuranceSvc: svc})
	return svc, resp, h.InsuranceRoutes()
}

func TestInsuranceImport(t *testing.T) {
	svc, resp, routes := newInsuranceTest()
	svc.importResult = dto.ImportResult{Created: 1, IDs: []string{"p1"}}

	body := `[{"memberSubscriberId":"M1","payeeName":"Jane","checkEftAmount":"$1,025.50","paymentDate":"2024-01-02"}]`
	req := authed(httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(body)), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)

	if svc.uid != "uid-1" || len(svc.rows) != 1 {
		t.Fatalf("service got uid=%q rows=%d", svc.uid, len(svc.rows))
	}
	if got := svc.rows[0].CheckEFTAmount.Value.StringFixed(2); got != "1025.50" {
		t.Fatalf("amount = %s", got)
	}
	if resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("status = %d", resp.writeSuccessStatus)
	}
}

func TestInsuranceImportRejectsBadBody(t *testing.T) {
	tests := map[string]string{
		"Object":    `{"memberSubscriberId":"M1"}`,
		"Empty":     ``,
		"Malformed": `[{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			svc, resp, routes := newInsuranceTest()
			req := authed(httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(body)), "uid-1")
			routes.ServeHTTP(httptest.NewRecorder(), req)

			if svc.rows != nil {
				t.Fatalf("service should not be called")
			}
			var verr *errs.ValidationError
			if !errors.As(resp.handleError, &verr) {
				t.Fatalf("expected validation error, got %v", resp.handleError)
			}
		})
	}
}

func TestInsuranceRoutesPassIDs(t *testing.T) {
	svc, resp, routes := newInsuranceTest()

	req := authed(httptest.NewRequest(http.MethodPut, "/p7/tracking-status", strings.NewReader(`{"trackingStatus":"paid"}`)), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)
	if svc.id != "p7" || svc.status != "paid" {
		t.Fatalf("tracking status got id=%q status=%q", svc.id, svc.status)
	}

	req = authed(httptest.NewRequest(http.MethodPatch, "/p8", strings.NewReader(`{"payeeName":"Janet"}`)), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)
	if svc.id != "p8" || svc.update.PayeeName == nil || *svc.update.PayeeName != "Janet" {
		t.Fatalf("update got id=%q req=%+v", svc.id, svc.update)
	}

	req = authed(httptest.NewRequest(http.MethodDelete, "/p9", nil), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)
	if svc.id != "p9" || !resp.writeSuccessCalled {
		t.Fatalf("delete got id=%q", svc.id)
	}
}

func TestInsuranceBulkDelete(t *testing.T) {
	svc, resp, routes := newInsuranceTest()

	req := authed(httptest.NewRequest(http.MethodPost, "/bulk-delete", strings.NewReader(`{"ids":["a","b"]}`)), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)

	if len(svc.ids) != 2 {
		t.Fatalf("ids = %v", svc.ids)
	}
	if got, ok := resp.writeSuccessData.(dto.BulkDeleteResult); !ok || got.Deleted != 2 {
		t.Fatalf("data = %#v", resp.writeSuccessData)
	}
}

func TestInsuranceServiceErrorDelegated(t *testing.T) {
	svc, resp, routes := newInsuranceTest()
	svc.err = errs.NewNotFoundError("insurance payment not found")

	req := authed(httptest.NewRequest(http.MethodDelete, "/missing", nil), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)

	if !errors.Is(resp.handleError, svc.err) {
		t.Fatalf("HandleError got %v", resp.handleError)
	}
	if resp.writeSuccessCalled {
		t.Fatalf("WriteSuccess should not be called")
	}
}
