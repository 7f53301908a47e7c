// Package venmo turns a Venmo statement export into received patient
// payments and maps the people who paid onto known patients.
package venmo

import (
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/pkg/money"
)

// Transaction is one completed payment the statement owner received.
type Transaction struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Counterparty string          `json:"counterparty"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
}

type Statement struct {
	Owner        string        `json:"owner"`
	Transactions []Transaction `json:"transactions"`
	PaymentRows  int           `json:"paymentRows"`  // rows of type payment
	CompleteRows int           `json:"completeRows"` // of those, completed with a readable amount
}

type columns struct {
	id, datetime, typ, status, note, from, to, amount int
}

func (c columns) get(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

type row struct {
	id, date, from, to, note string
	amount                   decimal.Decimal
}

// Parse reads a statement export. Banner text before the header row and
// summary rows after the transactions are ignored.
func Parse(r io.Reader) (*Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

func ParseString(data string) (*Statement, error) {
	records := SplitRecords(strings.TrimPrefix(data, "\ufeff"))

	headerAt := -1
	for i, rec := range records {
		if isHeader(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, errs.NewParseError("could not find the header row: expected columns id, datetime, type")
	}

	cols, err := locateColumns(records[headerAt])
	if err != nil {
		return nil, err
	}

	st := &Statement{}
	var kept []row
	for _, rec := range records[headerAt+1:] {
		if !isNumeric(cols.get(rec, cols.id)) {
			continue
		}
		if !strings.EqualFold(cols.get(rec, cols.typ), "payment") {
			continue
		}
		st.PaymentRows++
		if cols.status >= 0 && !strings.EqualFold(cols.get(rec, cols.status), "complete") {
			continue
		}
		amount, err := money.Parse(cols.get(rec, cols.amount))
		if err != nil {
			continue
		}
		st.CompleteRows++
		kept = append(kept, row{
			id:     cols.get(rec, cols.id),
			date:   datePart(cols.get(rec, cols.datetime)),
			from:   cols.get(rec, cols.from),
			to:     cols.get(rec, cols.to),
			note:   cols.get(rec, cols.note),
			amount: amount,
		})
	}

	st.Owner = inferOwner(kept)
	for _, k := range kept {
		if k.amount.IsNegative() {
			continue
		}
		st.Transactions = append(st.Transactions, Transaction{
			ID:           k.id,
			Date:         k.date,
			From:         k.from,
			To:           k.to,
			Counterparty: counterparty(k, st.Owner),
			Amount:       k.amount,
			Note:         k.note,
		})
	}

	if len(st.Transactions) == 0 {
		return nil, errs.NewParseError(
			"no received payments found: saw %d payment rows, %d completed, 0 received (positive amount); check that this is the right statement and that patients paid you rather than you paying them",
			st.PaymentRows, st.CompleteRows)
	}
	return st, nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`)))
}

func isHeader(rec []string) bool {
	seen := map[string]bool{}
	for _, cell := range rec {
		seen[normalizeHeader(cell)] = true
	}
	return seen["id"] && seen["datetime"] && seen["type"]
}

func locateColumns(header []string) (columns, error) {
	cols := columns{id: -1, datetime: -1, typ: -1, status: -1, note: -1, from: -1, to: -1, amount: -1}
	plainAmount := -1
	for i, cell := range header {
		switch h := normalizeHeader(cell); {
		case h == "id":
			cols.id = i
		case h == "datetime":
			cols.datetime = i
		case h == "type":
			cols.typ = i
		case h == "status":
			cols.status = i
		case h == "note":
			cols.note = i
		case h == "from":
			cols.from = i
		case h == "to":
			cols.to = i
		case strings.HasPrefix(h, "amount (total"):
			cols.amount = i
		case h == "amount":
			plainAmount = i
		}
	}
	if cols.amount < 0 {
		cols.amount = plainAmount
	}

	var missing []string
	if cols.datetime < 0 {
		missing = append(missing, "datetime")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount (total)")
	}
	if len(missing) > 0 {
		return cols, errs.NewParseError("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func datePart(datetime string) string {
	date, _, _ := strings.Cut(datetime, "T")
	return strings.TrimSpace(date)
}

// inferOwner picks the name that appears most often as sender or recipient,
// ignoring case. Ties go to the name the amount signs point at (recipient of
// money in, sender of money out), then to the alphabetically first name. The
// owner is returned as first spelled in the statement.
func inferOwner(rows []row) string {
	counts := map[string]int{}
	votes := map[string]int{}
	spelling := map[string]string{}
	fold := func(name string) string {
		k := strings.ToLower(name)
		if _, ok := spelling[k]; !ok {
			spelling[k] = name
		}
		return k
	}
	for _, r := range rows {
		for _, name := range []string{r.from, r.to} {
			if name != "" {
				counts[fold(name)]++
			}
		}
		switch {
		case r.amount.IsNegative() && r.from != "":
			votes[fold(r.from)]++
		case !r.amount.IsNegative() && r.to != "":
			votes[fold(r.to)]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		if votes[a] != votes[b] {
			return votes[a] > votes[b]
		}
		return spelling[a] < spelling[b]
	})
	return spelling[names[0]]
}

func counterparty(r row, owner string) string {
	switch {
	case owner != "" && strings.EqualFold(r.from, owner) && r.to != "":
		return r.to
	case owner != "" && strings.EqualFold(r.to, owner):
		return r.from
	default:
		return r.from
	}
}
