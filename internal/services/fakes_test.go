package services

import (
	"context"
	"sort"
	"strconv"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

// --- Fakes ---

type fakeInsuranceStore struct {
	items       map[string]*models.InsurancePayment
	nextID      int
	createCalls int
	failCreate  int // fail the nth create (1-based) when > 0
	listErr     error
	deleted     []string
}

func newFakeInsuranceStore() *fakeInsuranceStore {
	return &fakeInsuranceStore{items: map[string]*models.InsurancePayment{}}
}

func (f *fakeInsuranceStore) List(_ context.Context, uid string) ([]*models.InsurancePayment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.InsurancePayment
	for _, p := range f.items {
		if p.UserID == uid {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInsuranceStore) Get(_ context.Context, uid, id string) (*models.InsurancePayment, error) {
	p, ok := f.items[id]
	if !ok || p.UserID != uid {
		return nil, errs.NewNotFoundError("insurance payment not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeInsuranceStore) Create(_ context.Context, uid string, p *models.InsurancePayment) error {
	f.createCalls++
	if f.failCreate > 0 && f.createCalls == f.failCreate {
		return errs.NewDatabaseError("create", "failed to create insurance payment", nil)
	}
	f.nextID++
	p.ID = "ins-" + strconv.Itoa(f.nextID)
	p.UserID = uid
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeInsuranceStore) Update(_ context.Context, uid string, p *models.InsurancePayment) error {
	cur, ok := f.items[p.ID]
	if !ok || cur.UserID != uid {
		return errs.NewNotFoundError("insurance payment not found")
	}
	cp := *p
	cp.UserID = uid
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeInsuranceStore) Delete(_ context.Context, uid, id string) error {
	p, ok := f.items[id]
	if !ok || p.UserID != uid {
		return errs.NewNotFoundError("insurance payment not found")
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInsuranceStore) DeleteMany(_ context.Context, uid string, ids []string) error {
	for _, id := range ids {
		if p, ok := f.items[id]; ok && p.UserID == uid {
			delete(f.items, id)
			f.deleted = append(f.deleted, id)
		}
	}
	return nil
}

type fakeVenmoStore struct {
	items      map[string]*models.VenmoPayment
	nextID     int
	createErr  error
	createdIDs []string
}

func newFakeVenmoStore() *fakeVenmoStore {
	return &fakeVenmoStore{items: map[string]*models.VenmoPayment{}}
}

func (f *fakeVenmoStore) List(_ context.Context, uid string) ([]*models.VenmoPayment, error) {
	var out []*models.VenmoPayment
	for _, p := range f.items {
		if p.UserID == uid {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVenmoStore) Get(_ context.Context, uid, id string) (*models.VenmoPayment, error) {
	p, ok := f.items[id]
	if !ok || p.UserID != uid {
		return nil, errs.NewNotFoundError("venmo payment not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeVenmoStore) Create(_ context.Context, uid string, p *models.VenmoPayment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = "ven-" + strconv.Itoa(f.nextID)
	p.UserID = uid
	cp := *p
	f.items[p.ID] = &cp
	f.createdIDs = append(f.createdIDs, p.ID)
	return nil
}

func (f *fakeVenmoStore) Delete(_ context.Context, uid, id string) error {
	p, ok := f.items[id]
	if !ok || p.UserID != uid {
		return errs.NewNotFoundError("venmo payment not found")
	}
	delete(f.items, id)
	return nil
}

type fakeSettingsStore struct {
	settings map[string]*models.UserSetting
	saves    int
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{settings: map[string]*models.UserSetting{}}
}

func (f *fakeSettingsStore) Get(_ context.Context, uid string) (*models.UserSetting, error) {
	st, ok := f.settings[uid]
	if !ok {
		return &models.UserSetting{UserID: uid, IgnoredAddresses: []string{}}, nil
	}
	cp := *st
	return &cp, nil
}

func (f *fakeSettingsStore) Save(_ context.Context, st *models.UserSetting) error {
	f.saves++
	cp := *st
	f.settings[st.UserID] = &cp
	return nil
}

type stubUserStore struct {
	users           map[string]*models.User
	createUserCalls int
	createErr       error
	reassigned      [][2]string
	reassignErr     error
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.UID] = u
	}
	return s
}

func (s *stubUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.createUserCalls++
	if s.createErr != nil {
		return s.createErr
	}
	s.users[user.UID] = user
	return nil
}

func (s *stubUserStore) UpdateUser(_ context.Context, user *models.User) error {
	s.users[user.UID] = user
	return nil
}

func (s *stubUserStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	u, ok := s.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	return u, nil
}

func (s *stubUserStore) ReassignOwner(_ context.Context, fromUID, toUID string) error {
	if s.reassignErr != nil {
		return s.reassignErr
	}
	s.reassigned = append(s.reassigned, [2]string{fromUID, toUID})
	return nil
}
