// Package relational stores payments in a SQL database through gorm. It
// backs the same service interfaces as the Firestore store and is selected
// with STOREDRIVER=postgres or STOREDRIVER=sqlite.
package relational

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

// Migrate creates or updates the tables for every stored model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserSetting{},
		&models.InsurancePayment{},
		&models.VenmoPayment{},
	)
}

func notFoundOr(err error, what, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFoundError(what + " not found")
	}
	return errs.NewDatabaseError(op, "failed to "+op+" "+what, err)
}

type insuranceStore struct {
	db *gorm.DB
}

func NewInsuranceStore(db *gorm.DB) *insuranceStore {
	return &insuranceStore{db: db}
}

func (s *insuranceStore) List(ctx context.Context, uid string) ([]*models.InsurancePayment, error) {
	var out []*models.InsurancePayment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("payment_date DESC").Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list insurance payments", err)
	}
	return out, nil
}

func (s *insuranceStore) Get(ctx context.Context, uid, id string) (*models.InsurancePayment, error) {
	var p models.InsurancePayment
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).First(&p).Error
	if err != nil {
		return nil, notFoundOr(err, "insurance payment", "read")
	}
	return &p, nil
}

func (s *insuranceStore) Create(ctx context.Context, uid string, p *models.InsurancePayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.UserID = uid
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errs.NewDatabaseError("create", "failed to create insurance payment", err)
	}
	return nil
}

func (s *insuranceStore) Update(ctx context.Context, uid string, p *models.InsurancePayment) error {
	p.UserID = uid
	p.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).
		Model(&models.InsurancePayment{}).
		Where("id = ? AND user_id = ?", p.ID, uid).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(p)
	if res.Error != nil {
		return errs.NewDatabaseError("update", "failed to update insurance payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("insurance payment not found")
	}
	return nil
}

func (s *insuranceStore) Delete(ctx context.Context, uid, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).Delete(&models.InsurancePayment{})
	if res.Error != nil {
		return errs.NewDatabaseError("delete", "failed to delete insurance payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("insurance payment not found")
	}
	return nil
}

// DeleteMany removes the given payments in a single transaction.
func (s *insuranceStore) DeleteMany(ctx context.Context, uid string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND id IN ?", uid, ids).Delete(&models.InsurancePayment{}).Error
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete insurance payments", err)
	}
	return nil
}

type venmoStore struct {
	db *gorm.DB
}

func NewVenmoStore(db *gorm.DB) *venmoStore {
	return &venmoStore{db: db}
}

func (s *venmoStore) List(ctx context.Context, uid string) ([]*models.VenmoPayment, error) {
	var out []*models.VenmoPayment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", uid).
		Order("date DESC").Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list venmo payments", err)
	}
	return out, nil
}

func (s *venmoStore) Get(ctx context.Context, uid, id string) (*models.VenmoPayment, error) {
	var p models.VenmoPayment
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).First(&p).Error
	if err != nil {
		return nil, notFoundOr(err, "venmo payment", "read")
	}
	return &p, nil
}

func (s *venmoStore) Create(ctx context.Context, uid string, p *models.VenmoPayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.UserID = uid
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errs.NewDatabaseError("create", "failed to create venmo payment", err)
	}
	return nil
}

func (s *venmoStore) Delete(ctx context.Context, uid, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, uid).Delete(&models.VenmoPayment{})
	if res.Error != nil {
		return errs.NewDatabaseError("delete", "failed to delete venmo payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFoundError("venmo payment not found")
	}
	return nil
}

type settingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *settingsStore {
	return &settingsStore{db: db}
}

// Get returns the user's settings, or empty settings when none were saved.
func (s *settingsStore) Get(ctx context.Context, uid string) (*models.UserSetting, error) {
	var st models.UserSetting
	err := s.db.WithContext(ctx).Where("user_id = ?", uid).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserSetting{UserID: uid, IgnoredAddresses: []string{}}, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get settings", err)
	}
	if st.IgnoredAddresses == nil {
		st.IgnoredAddresses = []string{}
	}
	return &st, nil
}

func (s *settingsStore) Save(ctx context.Context, st *models.UserSetting) error {
	if err := s.db.WithContext(ctx).Save(st).Error; err != nil {
		return errs.NewDatabaseError("update", "failed to save settings", err)
	}
	return nil
}

type userStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *userStore {
	return &userStore{db: db}
}

func (s *userStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewAlreadyExistsError("user already exists")
	}
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create user", err)
	}
	return nil
}

func (s *userStore) UpdateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return errs.NewDatabaseError("update", "failed to update user", err)
	}
	return nil
}

func (s *userStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user", "read")
	}
	return &user, nil
}

// ReassignOwner moves every record owned by fromUID to toUID in one
// transaction. Settings of the target user win over the legacy ones.
func (s *userStore) ReassignOwner(ctx context.Context, fromUID, toUID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.InsurancePayment{}).Where("user_id = ?", fromUID).Update("user_id", toUID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.VenmoPayment{}).Where("user_id = ?", fromUID).Update("user_id", toUID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.UserSetting{}).Where("user_id = ?", toUID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return tx.Where("user_id = ?", fromUID).Delete(&models.UserSetting{}).Error
		}
		return tx.Model(&models.UserSetting{}).Where("user_id = ?", fromUID).Update("user_id", toUID).Error
	})
	if err != nil {
		return errs.NewDatabaseError("update", "failed to reassign records", err)
	}
	return nil
}
