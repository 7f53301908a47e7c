package dto

// InsurancePaymentInput is one row of a carrier remittance import.
type InsurancePaymentInput struct {
	ClaimStatus        string `json:"claimStatus"`
	DatesOfService     string `json:"datesOfService"`
	MemberSubscriberID string `json:"memberSubscriberId"`
	ProviderName       string `json:"providerName"`
	PaymentDate        string `json:"paymentDate"`
	ClaimNumber        string `json:"claimNumber"`
	CheckNumber        string `json:"checkNumber"`
	CheckEFTAmount     Amount `json:"checkEftAmount"`
	PayeeName          string `json:"payeeName"`
	PayeeAddress       string `json:"payeeAddress"`
}

// UpdateInsurancePaymentRequest edits an existing payment. Nil fields are
// left unchanged.
type UpdateInsurancePaymentRequest struct {
	ClaimStatus        *string `json:"claimStatus"`
	DatesOfService     *string `json:"datesOfService"`
	MemberSubscriberID *string `json:"memberSubscriberId"`
	ProviderName       *string `json:"providerName"`
	PaymentDate        *string `json:"paymentDate"`
	ClaimNumber        *string `json:"claimNumber"`
	CheckNumber        *string `json:"checkNumber"`
	CheckEFTAmount     *Amount `json:"checkEftAmount"`
	PayeeName          *string `json:"payeeName"`
	PayeeAddress       *string `json:"payeeAddress"`
	TrackingStatus     *string `json:"trackingStatus"`
}

type TrackingStatusRequest struct {
	TrackingStatus string `json:"trackingStatus"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type BulkDeleteResult struct {
	Deleted int `json:"deleted"`
}

// ImportResult reports what a batch import did. Updated counts insurance
// rows that matched an existing payment; Skipped counts patient payments
// that were already recorded.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	IDs     []string `json:"ids"`
}
