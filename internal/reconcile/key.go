// Package reconcile groups insurance remittances and patient payments by
// patient and works out what each patient still owes.
package reconcile

import (
	"strings"
)

// Key identifies one patient across both payment streams.
type Key string

const (
	memberPrefix = "id:"
	namePrefix   = "name:"
)

// PatientKey prefers the member ID. Records without one are keyed by their
// normalized name, which keeps them apart from every member-ID group: two
// people sharing a name but holding different member IDs never merge.
func PatientKey(memberID, name string) Key {
	if id := strings.ToLower(strings.TrimSpace(memberID)); id != "" {
		return Key(memberPrefix + id)
	}
	return Key(namePrefix + NormalizeName(name))
}

// ByName reports whether the key fell back to the patient name.
func (k Key) ByName() bool {
	return strings.HasPrefix(string(k), namePrefix)
}

// NormalizeName lowercases, collapses whitespace and turns "Last, First" into
// "first last" so both carrier formats compare equal.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if last, first, ok := strings.Cut(n, ","); ok && !strings.Contains(first, ",") {
		if f, l := strings.TrimSpace(first), strings.TrimSpace(last); f != "" && l != "" {
			n = f + " " + l
		}
	}
	return strings.Join(strings.Fields(n), " ")
}
