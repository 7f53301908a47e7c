package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type settingsStore interface {
	Get(ctx context.Context, uid string) (*models.UserSetting, error)
	Save(ctx context.Context, st *models.UserSetting) error
}

type settingsService struct {
	store settingsStore
}

func NewSettingsService(store settingsStore) *settingsService {
	return &settingsService{store: store}
}

func (s *settingsService) Get(ctx context.Context, uid string) (*models.UserSetting, error) {
	return s.store.Get(ctx, uid)
}

// UpdateIgnoredAddresses replaces the list of payee addresses whose
// insurance payments are left out of reconciliation. Blank and repeated
// entries are dropped.
func (s *settingsService) UpdateIgnoredAddresses(ctx context.Context, uid string, addresses []string) (*models.UserSetting, error) {
	st, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	cleaned := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.Join(strings.Fields(a), " ")
		k := strings.ToLower(a)
		if a == "" || seen[k] {
			continue
		}
		seen[k] = true
		cleaned = append(cleaned, a)
	}

	st.UserID = uid
	st.IgnoredAddresses = cleaned
	if err := s.store.Save(ctx, st); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("ignored addresses updated", "count", len(cleaned))
	return st, nil
}
