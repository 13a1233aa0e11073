package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildRecords turns one raw table into normalized records. Row 0 is the
// table title and row 1 the column header; tables with fewer than two rows
// yield no records. Failures, including panics caused by malformed cell
// structure, are returned as the table's error so the caller can skip just
// this table's contribution.
func BuildRecords(t Table, n *Normalizer) (records []Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	rows, err := t.Rows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	// Clean and normalize the header, preserving column positions. Absent
	// header cells leave an empty column name, which drops that column's
	// values below.
	header := rows[1]
	columns := make([]string, len(header))
	for i, cell := range header {
		if cell == nil {
			continue
		}
		label := strings.TrimSpace(strings.ReplaceAll(*cell, "\n", " "))
		if label == "" {
			continue
		}
		columns[i] = n.Normalize(label)
	}

	for _, row := range rows[2:] {
		if emptyRow(row) {
			continue
		}
		// The first column is the offense type; rows without one are not
		// data (section separators, stray fragments).
		if len(row) == 0 || row[0] == nil || strings.TrimSpace(*row[0]) == "" {
			continue
		}
		rec := Record{FieldOffenseType: strings.TrimSpace(*row[0])}
		for i := 1; i < len(row) && i < len(columns); i++ {
			if row[i] == nil || columns[i] == "" {
				continue
			}
			rec[columns[i]] = CoerceValue(columns[i], *row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// CoerceValue converts a raw cell string into the typed value stored under
// field. Percent-change cells become floats with their sign and percent
// markers stripped, plain signed digit runs become integers, and anything
// else stays a trimmed string. Coercion failure keeps the source text.
func CoerceValue(field, raw string) any {
	s := strings.TrimSpace(raw)
	if field == FieldPercentChange && s != "" {
		num := strings.TrimSpace(strings.NewReplacer("+", "", "%", "").Replace(s))
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			return f
		}
		return s
	}
	if signedDigits(s) {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return s
}

// signedDigits reports whether s is all digits after an optional leading
// sign prefix.
func signedDigits(s string) bool {
	t := strings.TrimLeft(s, "+-")
	if t == "" {
		return false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func emptyRow(row []*string) bool {
	for _, cell := range row {
		if cell != nil && strings.TrimSpace(*cell) != "" {
			return false
		}
	}
	return true
}
