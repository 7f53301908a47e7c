package venmo

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/GregMSThompson/patient-payments/internal/reconcile"
)

// Patient is a known patient a counterparty can be mapped onto.
type Patient struct {
	Name               string `json:"name"`
	MemberSubscriberID string `json:"memberSubscriberId"`
}

// Mapping links a statement counterparty to a patient. Auto is set when the
// mapping was suggested by AutoMap rather than entered by the operator.
type Mapping struct {
	Counterparty       string `json:"counterparty"`
	PatientName        string `json:"patientName"`
	MemberSubscriberID string `json:"memberSubscriberId"`
	Auto               bool   `json:"auto"`
}

// Mapped reports whether the counterparty's payments should be imported.
// Operator-entered mappings need both a name and a member ID.
func (m Mapping) Mapped() bool {
	if strings.TrimSpace(m.PatientName) == "" {
		return false
	}
	return m.Auto || strings.TrimSpace(m.MemberSubscriberID) != ""
}

// Confirm returns mappings with Auto kept only where it matches the
// suggestion AutoMap made for the same counterparty. Any other mapping is
// treated as operator-entered and needs a member ID to be imported.
func Confirm(mappings, suggested []Mapping) []Mapping {
	bySuggestion := make(map[string]Mapping, len(suggested))
	for _, m := range suggested {
		if m.Auto {
			bySuggestion[foldName(m.Counterparty)] = m
		}
	}

	out := make([]Mapping, len(mappings))
	for i, m := range mappings {
		if m.Auto {
			s, ok := bySuggestion[foldName(m.Counterparty)]
			m.Auto = ok &&
				strings.EqualFold(strings.TrimSpace(m.PatientName), strings.TrimSpace(s.PatientName)) &&
				strings.TrimSpace(m.MemberSubscriberID) == strings.TrimSpace(s.MemberSubscriberID)
		}
		out[i] = m
	}
	return out
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PendingPayment is a received transaction ready to be stored as a patient payment.
type PendingPayment struct {
	PatientName        string          `json:"patientName"`
	MemberSubscriberID string          `json:"memberSubscriberId"`
	Amount             decimal.Decimal `json:"amount"`
	Date               string          `json:"date"`
	Notes              string          `json:"notes,omitempty"`
	SourceID           string          `json:"sourceId,omitempty"`
}

// Counterparties returns the distinct counterparties of txs in first-seen order.
func Counterparties(txs []Transaction) []string {
	seen := map[string]bool{}
	var out []string
	for _, tx := range txs {
		name := strings.TrimSpace(tx.Counterparty)
		k := strings.ToLower(name)
		if name == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, name)
	}
	return out
}

// AutoMap suggests a patient for each counterparty. A patient matches when
// either lowercased name contains the other; among several matches the
// closest by edit distance wins. Counterparties without a match are
// returned unmapped.
func AutoMap(counterparties []string, patients []Patient) []Mapping {
	known := distinctPatients(patients)
	out := make([]Mapping, 0, len(counterparties))
	for _, cp := range counterparties {
		m := Mapping{Counterparty: cp}
		if p, ok := bestMatch(cp, known); ok {
			m.PatientName = p.Name
			m.MemberSubscriberID = p.MemberSubscriberID
			m.Auto = true
		}
		out = append(out, m)
	}
	return out
}

func distinctPatients(patients []Patient) []Patient {
	seen := map[reconcile.Key]bool{}
	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		k := reconcile.PatientKey(p.MemberSubscriberID, p.Name)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

func bestMatch(counterparty string, patients []Patient) (Patient, bool) {
	cp := strings.ToLower(strings.TrimSpace(counterparty))
	if cp == "" {
		return Patient{}, false
	}

	type candidate struct {
		p    Patient
		dist int
	}
	var candidates []candidate
	for _, p := range patients {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if !strings.Contains(cp, name) && !strings.Contains(name, cp) {
			continue
		}
		candidates = append(candidates, candidate{
			p:    p,
			dist: levenshtein.DistanceForStrings([]rune(cp), []rune(name), levenshtein.DefaultOptions),
		})
	}
	if len(candidates) == 0 {
		return Patient{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.p.Name != b.p.Name {
			return a.p.Name < b.p.Name
		}
		return a.p.MemberSubscriberID < b.p.MemberSubscriberID
	})
	return candidates[0].p, true
}

// Apply turns the received transactions of mapped counterparties into
// pending payments. Transactions of unmapped counterparties are left out.
func Apply(txs []Transaction, mappings []Mapping) []PendingPayment {
	byCounterparty := map[string]Mapping{}
	for _, m := range mappings {
		if m.Mapped() {
			byCounterparty[foldName(m.Counterparty)] = m
		}
	}

	var out []PendingPayment
	for _, tx := range txs {
		m, ok := byCounterparty[foldName(tx.Counterparty)]
		if !ok || tx.Amount.IsNegative() {
			continue
		}
		out = append(out, PendingPayment{
			PatientName:        strings.TrimSpace(m.PatientName),
			MemberSubscriberID: strings.TrimSpace(m.MemberSubscriberID),
			Amount:             tx.Amount,
			Date:               tx.Date,
			Notes:              tx.Note,
			SourceID:           strings.TrimSpace(tx.ID),
		})
	}
	return out
}
