package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

type settingsStore struct {
	client *firestore.Client
}

func NewSettingsStore(client *firestore.Client) *settingsStore {
	return &settingsStore{client: client}
}

func (s *settingsStore) doc(uid string) *firestore.DocumentRef {
	return userCollection(s.client, uid, settingsCollection).Doc(settingsDocID)
}

// Get returns the user's settings, or empty settings when none were saved.
func (s *settingsStore) Get(ctx context.Context, uid string) (*models.UserSetting, error) {
	snap, err := s.doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return &models.UserSetting{UserID: uid, IgnoredAddresses: []string{}}, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get settings", err)
	}
	var st models.UserSetting
	if err := snap.DataTo(&st); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse settings data", err)
	}
	st.UserID = uid
	if st.IgnoredAddresses == nil {
		st.IgnoredAddresses = []string{}
	}
	return &st, nil
}

func (s *settingsStore) Save(ctx context.Context, st *models.UserSetting) error {
	st.UpdatedAt = time.Now()
	if _, err := s.doc(st.UserID).Set(ctx, st); err != nil {
		return errs.NewDatabaseError("update", "failed to save settings", err)
	}
	return nil
}
