package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/patient-payments/internal/models"
)

type stubSettingsService struct {
	uid       string
	addresses []string
}

func (s *stubSettingsService) Get(_ context.Context, uid string) (*models.UserSetting, error) {
	s.uid = uid
	return &models.UserSetting{}, nil
}

func (s *stubSettingsService) UpdateIgnoredAddresses(_ context.Context, uid string, addresses []string) (*models.UserSetting, error) {
	s.uid, s.addresses = uid, addresses
	return &models.UserSetting{IgnoredAddresses: addresses}, nil
}

func TestSettingsRoutes(t *testing.T) {
	svc := &stubSettingsService{}
	resp := &stubResponseHandler{}
	routes := NewSettingsHandlers(&Deps{ResponseHandler: resp, SettingsSvc: svc}).SettingsRoutes()

	body := `{"ignoredAddresses":["1 Main St","PO Box 9"]}`
	req := authed(httptest.NewRequest(http.MethodPut, "/ignored-addresses", strings.NewReader(body)), "uid-1")
	routes.ServeHTTP(httptest.NewRecorder(), req)

	if svc.uid != "uid-1" || len(svc.addresses) != 2 || svc.addresses[1] != "PO Box 9" {
		t.Fatalf("service got uid=%q addresses=%v", svc.uid, svc.addresses)
	}

	resp.writeSuccessCalled = false
	routes.ServeHTTP(httptest.NewRecorder(), authed(httptest.NewRequest(http.MethodGet, "/", nil), "uid-2"))
	if svc.uid != "uid-2" || !resp.writeSuccessCalled {
		t.Fatalf("get not served for uid-2")
	}
}
