package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

type venmoDoc struct {
	ID                 string    `firestore:"id"`
	PatientName        string    `firestore:"patientName"`
	MemberSubscriberID string    `firestore:"memberSubscriberId"`
	Amount             string    `firestore:"amount"`
	Date               string    `firestore:"date"`
	Notes              string    `firestore:"notes"`
	SourceID           string    `firestore:"sourceId,omitempty"`
	CreatedAt          time.Time `firestore:"createdAt"`
}

type venmoStore struct {
	client *firestore.Client
}

func NewVenmoStore(client *firestore.Client) *venmoStore {
	return &venmoStore{client: client}
}

func (s *venmoStore) collection(uid string) *firestore.CollectionRef {
	return userCollection(s.client, uid, venmoCollection)
}

func venmoFromDoc(uid string, snap *firestore.DocumentSnapshot) (*models.VenmoPayment, error) {
	var d venmoDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse venmo payment data", err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid stored amount", err)
	}
	return &models.VenmoPayment{
		ID:                 snap.Ref.ID,
		UserID:             uid,
		PatientName:        d.PatientName,
		MemberSubscriberID: d.MemberSubscriberID,
		Amount:             amount,
		Date:               d.Date,
		Notes:              d.Notes,
		SourceID:           d.SourceID,
		CreatedAt:          d.CreatedAt,
	}, nil
}

// List returns the user's patient payments, newest first.
func (s *venmoStore) List(ctx context.Context, uid string) ([]*models.VenmoPayment, error) {
	var out []*models.VenmoPayment
	q := s.collection(uid).OrderBy("date", firestore.Desc)
	err := eachDoc(ctx, q, "venmo payments", func(snap *firestore.DocumentSnapshot) error {
		p, err := venmoFromDoc(uid, snap)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *venmoStore) Get(ctx context.Context, uid, id string) (*models.VenmoPayment, error) {
	snap, err := getDoc(ctx, s.collection(uid).Doc(id), "venmo payment")
	if err != nil {
		return nil, err
	}
	return venmoFromDoc(uid, snap)
}

func (s *venmoStore) Create(ctx context.Context, uid string, p *models.VenmoPayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UserID = uid

	_, err := s.collection(uid).Doc(p.ID).Create(ctx, venmoDoc{
		ID:                 p.ID,
		PatientName:        p.PatientName,
		MemberSubscriberID: p.MemberSubscriberID,
		Amount:             p.Amount.StringFixed(2),
		Date:               p.Date,
		Notes:              p.Notes,
		SourceID:           p.SourceID,
		CreatedAt:          p.CreatedAt,
	})
	if err != nil {
		return errs.NewDatabaseError("create", "failed to create venmo payment", err)
	}
	return nil
}

func (s *venmoStore) Delete(ctx context.Context, uid, id string) error {
	return deleteDoc(ctx, s.collection(uid).Doc(id), "venmo payment")
}
