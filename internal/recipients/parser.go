// Package recipients converts raw recipient input (a CSV upload or a pasted
// delimited list) into an ordered list of email address strings.
//
// Parsing is deliberately permissive: addresses are not validated beyond
// being non-empty, and duplicates pass through untouched. A malformed
// address surfaces later as a per-recipient delivery failure instead of
// being silently dropped here.
package recipients

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRecipients indicates the source contained no usable addresses.
var ErrNoRecipients = errors.New("no recipients found")

// ParseCSV extracts recipient addresses from CSV data. It uses the column
// whose header is named "email" (case-insensitive), or the first column if
// no such header exists. The header row is never treated as a recipient.
//
// Input that does not parse as comma-separated CSV is retried with a
// semicolon delimiter, then falls back to plain-text splitting, mirroring
// how spreadsheet exports vary between locales.
func ParseCSV(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipient source: %w", err)
	}

	records, err := readRecords(data, ',')
	if err != nil || semicolonDelimited(records) {
		if retried, retryErr := readRecords(data, ';'); retryErr == nil && len(retried) > 0 {
			records, err = retried, nil
		}
	}
	if err != nil {
		// Not CSV at all; treat as one address per line.
		list := ParseText(string(data))
		if len(list) == 0 {
			return nil, fmt.Errorf("%w in source", ErrNoRecipients)
		}
		return list, nil
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: source is empty", ErrNoRecipients)
	}

	col := emailColumn(records[0])
	list := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if col >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[col]); v != "" {
			list = append(list, v)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("%w in column %d", ErrNoRecipients, col)
	}
	return list, nil
}

// ParseText splits a pasted recipient list on commas, semicolons, and
// newlines in any combination, trimming whitespace and dropping empty
// tokens. Order is preserved; duplicates are kept.
func ParseText(text string) []string {
	normalized := strings.NewReplacer(";", ",", "\r\n", ",", "\n", ",").Replace(text)

	var list []string
	for _, token := range strings.Split(normalized, ",") {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

// readRecords parses the data with the given field delimiter. Rows may have
// varying field counts; spreadsheet exports are rarely rectangular.
func readRecords(data []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// semicolonDelimited reports whether a comma-parse collapsed a
// semicolon-delimited file into single-field rows.
func semicolonDelimited(records [][]string) bool {
	if len(records) == 0 || len(records[0]) != 1 {
		return false
	}
	return strings.Contains(records[0][0], ";")
}

// emailColumn returns the index of the header named "email"
// (case-insensitive), or 0 if no header matches.
func emailColumn(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "email") {
			return i
		}
	}
	return 0
}
