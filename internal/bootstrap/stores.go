package bootstrap

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GregMSThompson/patient-payments/internal/config"
	"github.com/GregMSThompson/patient-payments/internal/crypto"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/internal/store"
	"github.com/GregMSThompson/patient-payments/internal/store/relational"
)

const defaultSQLitePath = "file:patient-payments.db"

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	ReassignOwner(ctx context.Context, fromUID, toUID string) error
}

type InsuranceStore interface {
	List(ctx context.Context, uid string) ([]*models.InsurancePayment, error)
	Get(ctx context.Context, uid, id string) (*models.InsurancePayment, error)
	Create(ctx context.Context, uid string, p *models.InsurancePayment) error
	Update(ctx context.Context, uid string, p *models.InsurancePayment) error
	Delete(ctx context.Context, uid, id string) error
	DeleteMany(ctx context.Context, uid string, ids []string) error
}

type VenmoStore interface {
	List(ctx context.Context, uid string) ([]*models.VenmoPayment, error)
	Get(ctx context.Context, uid, id string) (*models.VenmoPayment, error)
	Create(ctx context.Context, uid string, p *models.VenmoPayment) error
	Delete(ctx context.Context, uid, id string) error
}

type SettingsStore interface {
	Get(ctx context.Context, uid string) (*models.UserSetting, error)
	Save(ctx context.Context, st *models.UserSetting) error
}

// Stores is one backend's set of stores, chosen by STOREDRIVER.
type Stores struct {
	Users     UserStore
	Insurance InsuranceStore
	Venmo     VenmoStore
	Settings  SettingsStore
}

func (bs *Bootstrap) initStores(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		return bs.initFirestoreStores(ctx, cfg)
	case config.StorePostgres, config.StoreSQLite:
		db, err := InitDatabase(cfg)
		if err != nil {
			return err
		}
		bs.DB = db
		if err := relational.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		bs.Stores = Stores{
			Users:     relational.NewUserStore(db),
			Insurance: relational.NewInsuranceStore(db),
			Venmo:     relational.NewVenmoStore(db),
			Settings:  relational.NewSettingsStore(db),
		}
		return nil
	default:
		return fmt.Errorf("unknown STOREDRIVER %q", cfg.StoreDriver)
	}
}

func (bs *Bootstrap) initFirestoreStores(ctx context.Context, cfg *config.Config) error {
	var err error
	bs.Firestore, err = InitFirestore(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}

	cipher := crypto.NewPlaintext()
	if cfg.KMSKeyName != "" {
		bs.KMS, err = InitKMS(ctx)
		if err != nil {
			return err
		}
		cipher = crypto.NewKMS(bs.KMS, cfg.KMSKeyName)
	} else {
		bs.Log.Warn("KMSKEYNAME not set; payee addresses are stored unencrypted")
	}

	bs.Stores = Stores{
		Users:     store.NewUserStore(bs.Firestore),
		Insurance: store.NewInsuranceStore(bs.Firestore, cipher),
		Venmo:     store.NewVenmoStore(bs.Firestore),
		Settings:  store.NewSettingsStore(bs.Firestore),
	}
	return nil
}

// InitDatabase opens the relational backend named by STOREDRIVER.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STOREDRIVER=postgres needs DATABASEURL")
		}
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		path := cfg.DatabaseURL
		if path == "" {
			path = defaultSQLitePath
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver == config.StoreSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
