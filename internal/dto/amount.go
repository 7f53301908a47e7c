package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/patient-payments/pkg/money"
)

// Amount is a decimal that accepts either a JSON number or a formatted
// currency string such as "$1,025.00". Set records whether the field was
// present at all.
type Amount struct {
	Value decimal.Decimal
	Set   bool
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	v, err := money.Parse(raw)
	if err != nil {
		return err
	}
	*a = Amount{Value: v, Set: true}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value.StringFixed(2))
}
