package venmo

import "strings"

// SplitRecords tokenizes CSV text into records of fields.
//
// Quoted fields may contain commas, line breaks and doubled quotes ("" for a
// literal "). Records end at \r\n, \n or a bare \r outside quotes. Blank
// lines are dropped. encoding/csv is not used because it does not treat a
// bare \r as a record terminator and refuses the ragged banner rows that
// precede the header in a statement export.
func SplitRecords(data string) [][]string {
	var (
		records [][]string
		record  []string
		field   strings.Builder
		quoted  bool
		started bool // current record has content
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		if started {
			endField()
			records = append(records, record)
		}
		record = nil
		started = false
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		if quoted {
			if c == '"' {
				if i+1 < len(data) && data[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				quoted = false
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			quoted = true
			started = true
		case ',':
			endField()
			started = true
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			field.WriteByte(c)
			started = true
		}
	}
	endRecord()
	return records
}
