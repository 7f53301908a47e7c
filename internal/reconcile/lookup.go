package reconcile

import (
	"errors"
	"net/url"
	"sort"
	"strings"

	"github.com/GregMSThompson/patient-payments/internal/models"
)

const lookupSeparator = "|||"

var ErrEmptyLookup = errors.New("member ID or patient name is required")

// Lookup is the decoded patient detail key: a member ID, optionally followed
// by the patient name to fall back on.
type Lookup struct {
	MemberID string
	Name     string
}

// ParseLookupKey decodes a percent-encoded "memberID" or
// "memberID|||patientName" path token.
func ParseLookupKey(token string) (Lookup, error) {
	raw, err := url.PathUnescape(token)
	if err != nil {
		return Lookup{}, err
	}
	var l Lookup
	if id, name, ok := strings.Cut(raw, lookupSeparator); ok {
		l = Lookup{MemberID: strings.TrimSpace(id), Name: strings.TrimSpace(name)}
	} else {
		l = Lookup{MemberID: strings.TrimSpace(raw)}
	}
	if l.MemberID == "" && l.Name == "" {
		return Lookup{}, ErrEmptyLookup
	}
	return l, nil
}

// Token is the inverse of ParseLookupKey.
func (l Lookup) Token() string {
	if l.Name == "" {
		return url.PathEscape(l.MemberID)
	}
	return url.PathEscape(l.MemberID + lookupSeparator + l.Name)
}

// Select returns the payments belonging to the looked-up patient.
//
// With a member ID, records carrying that ID match. If that finds no
// insurance records and a name was supplied, the name-keyed records (those
// without a member ID) of that patient are used as well. Without a member ID
// only name-keyed records match. Records that carry a different member ID
// never match by name.
func (l Lookup) Select(insurance []*models.InsurancePayment, venmo []*models.VenmoPayment) ([]*models.InsurancePayment, []*models.VenmoPayment) {
	nameKey := PatientKey("", l.Name)

	if l.MemberID == "" {
		return filterInsurance(insurance, nameKey), filterVenmo(venmo, nameKey)
	}

	idKey := PatientKey(l.MemberID, "")
	ins := filterInsurance(insurance, idKey)
	ven := filterVenmo(venmo, idKey)
	if len(ins) == 0 && l.Name != "" {
		ins = filterInsurance(insurance, nameKey)
		ven = append(ven, filterVenmo(venmo, nameKey)...)
	}
	return ins, ven
}

func filterInsurance(in []*models.InsurancePayment, key Key) []*models.InsurancePayment {
	var out []*models.InsurancePayment
	for _, p := range in {
		if PatientKey(p.MemberSubscriberID, p.PayeeName) == key {
			out = append(out, p)
		}
	}
	return out
}

func filterVenmo(in []*models.VenmoPayment, key Key) []*models.VenmoPayment {
	var out []*models.VenmoPayment
	for _, p := range in {
		if PatientKey(p.MemberSubscriberID, p.PatientName) == key {
			out = append(out, p)
		}
	}
	return out
}

// SortNewestFirst orders remittances the way the detail view lists them:
// latest payment date first, then latest received, then by ID.
func SortNewestFirst(items []*models.InsurancePayment) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.PaymentDate != b.PaymentDate {
			return a.PaymentDate > b.PaymentDate
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
