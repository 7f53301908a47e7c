package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/crypto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

// insuranceDoc is the stored shape of an insurance payment. Firestore has no
// decimal type, so amounts are kept as fixed-point strings.
type insuranceDoc struct {
	ID                 string    `firestore:"id"`
	ClaimStatus        string    `firestore:"claimStatus"`
	DatesOfService     string    `firestore:"datesOfService"`
	MemberSubscriberID string    `firestore:"memberSubscriberId"`
	ProviderName       string    `firestore:"providerName"`
	PaymentDate        string    `firestore:"paymentDate"`
	ClaimNumber        string    `firestore:"claimNumber"`
	CheckNumber        string    `firestore:"checkNumber"`
	CheckEFTAmount     string    `firestore:"checkEftAmount"`
	PayeeName          string    `firestore:"payeeName"`
	PayeeAddress       string    `firestore:"payeeAddress"` // ciphertext when a KMS key is configured
	TrackingStatus     string    `firestore:"trackingStatus"`
	CreatedAt          time.Time `firestore:"createdAt"`
	UpdatedAt          time.Time `firestore:"updatedAt"`
}

type insuranceStore struct {
	client *firestore.Client
	cipher crypto.Cipher
}

func NewInsuranceStore(client *firestore.Client, cipher crypto.Cipher) *insuranceStore {
	return &insuranceStore{client: client, cipher: cipher}
}

func (s *insuranceStore) collection(uid string) *firestore.CollectionRef {
	return userCollection(s.client, uid, insuranceCollection)
}

func (s *insuranceStore) toDoc(ctx context.Context, p *models.InsurancePayment) (*insuranceDoc, error) {
	address, err := s.cipher.Encrypt(ctx, p.PayeeAddress)
	if err != nil {
		return nil, err
	}
	return &insuranceDoc{
		ID:                 p.ID,
		ClaimStatus:        p.ClaimStatus,
		DatesOfService:     p.DatesOfService,
		MemberSubscriberID: p.MemberSubscriberID,
		ProviderName:       p.ProviderName,
		PaymentDate:        p.PaymentDate,
		ClaimNumber:        p.ClaimNumber,
		CheckNumber:        p.CheckNumber,
		CheckEFTAmount:     p.CheckEFTAmount.StringFixed(2),
		PayeeName:          p.PayeeName,
		PayeeAddress:       address,
		TrackingStatus:     string(p.TrackingStatus),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}, nil
}

func (s *insuranceStore) fromDoc(ctx context.Context, uid string, snap *firestore.DocumentSnapshot) (*models.InsurancePayment, error) {
	var d insuranceDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse insurance payment data", err)
	}
	amount, err := decimal.NewFromString(d.CheckEFTAmount)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid stored amount", err)
	}
	address, err := s.cipher.Decrypt(ctx, d.PayeeAddress)
	if err != nil {
		return nil, err
	}
	return &models.InsurancePayment{
		ID:                 snap.Ref.ID,
		UserID:             uid,
		ClaimStatus:        d.ClaimStatus,
		DatesOfService:     d.DatesOfService,
		MemberSubscriberID: d.MemberSubscriberID,
		ProviderName:       d.ProviderName,
		PaymentDate:        d.PaymentDate,
		ClaimNumber:        d.ClaimNumber,
		CheckNumber:        d.CheckNumber,
		CheckEFTAmount:     amount,
		PayeeName:          d.PayeeName,
		PayeeAddress:       address,
		TrackingStatus:     models.TrackingStatus(d.TrackingStatus),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

// List returns the user's insurance payments, most recent payment date first.
func (s *insuranceStore) List(ctx context.Context, uid string) ([]*models.InsurancePayment, error) {
	var out []*models.InsurancePayment
	q := s.collection(uid).OrderBy("paymentDate", firestore.Desc)
	err := eachDoc(ctx, q, "insurance payments", func(snap *firestore.DocumentSnapshot) error {
		p, err := s.fromDoc(ctx, uid, snap)
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

func (s *insuranceStore) Get(ctx context.Context, uid, id string) (*models.InsurancePayment, error) {
	snap, err := getDoc(ctx, s.collection(uid).Doc(id), "insurance payment")
	if err != nil {
		return nil, err
	}
	return s.fromDoc(ctx, uid, snap)
}

func (s *insuranceStore) Create(ctx context.Context, uid string, p *models.InsurancePayment) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.UserID = uid

	doc, err := s.toDoc(ctx, p)
	if err != nil {
		return err
	}
	if _, err := s.collection(uid).Doc(p.ID).Create(ctx, doc); err != nil {
		return errs.NewDatabaseError("create", "failed to create insurance payment", err)
	}
	return nil
}

func (s *insuranceStore) Update(ctx context.Context, uid string, p *models.InsurancePayment) error {
	p.UpdatedAt = time.Now()
	p.UserID = uid

	doc, err := s.toDoc(ctx, p)
	if err != nil {
		return err
	}
	if _, err := s.collection(uid).Doc(p.ID).Set(ctx, doc); err != nil {
		return errs.NewDatabaseError("update", "failed to update insurance payment", err)
	}
	return nil
}

func (s *insuranceStore) Delete(ctx context.Context, uid, id string) error {
	return deleteDoc(ctx, s.collection(uid).Doc(id), "insurance payment")
}

// DeleteMany removes the given payments in one bulk write.
func (s *insuranceStore) DeleteMany(ctx context.Context, uid string, ids []string) error {
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, s.collection(uid).Doc(id))
	}
	if err := bulkDelete(ctx, s.client, refs); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete insurance payments", err)
	}
	return nil
}
