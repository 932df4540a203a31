package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decoder turns a delimiter-separated export artifact into header-keyed rows.
//
// By default every line is split on the delimiter as-is and surrounding quote
// characters are stripped from each field. A quoted field that contains the
// delimiter is therefore split in two; platform exports that rely on this
// behaviour keep decoding the same way. WithQuotedFields switches to RFC 4180
// parsing.
type Decoder struct {
	delimiter    rune
	quotedFields bool
	trimSpace    bool
}

// DecoderOption is a functional option for Decoder configuration
type DecoderOption func(*Decoder)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) DecoderOption {
	return func(dec *Decoder) {
		dec.delimiter = d
	}
}

// WithQuotedFields enables RFC 4180 quoting, so quoted fields may contain the delimiter
func WithQuotedFields(enabled bool) DecoderOption {
	return func(dec *Decoder) {
		dec.quotedFields = enabled
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) DecoderOption {
	return func(dec *Decoder) {
		dec.trimSpace = trim
	}
}

// NewDecoder creates a decoder
func NewDecoder(opts ...DecoderOption) *Decoder {
	dec := &Decoder{
		delimiter: ',',
		trimSpace: true,
	}
	for _, opt := range opts {
		opt(dec)
	}
	return dec
}

// Row represents a decoded data row with its line number
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the first non-empty value among the given columns, or def
func (r *Row) GetOrDefault(def string, headers ...string) string {
	for _, h := range headers {
		if val, ok := r.Data[h]; ok && val != "" {
			return val
		}
	}
	return def
}

// Decode parses data. The first non-blank line is the header; at least one
// data row must follow.
func (d *Decoder) Decode(data []byte) ([]string, []*Row, error) {
	text, err := normalize(data)
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	var lineNumbers []int
	if d.quotedFields {
		records, lineNumbers, err = d.readQuoted(text)
		if err != nil {
			return nil, nil, err
		}
	} else {
		records, lineNumbers = d.readLines(text)
	}

	if len(records) < 2 {
		return nil, nil, ErrNoDataRows
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = d.clean(h)
	}
	if len(headers) == 1 && headers[0] == "" {
		return nil, nil, ErrMissingHeader
	}

	rows := make([]*Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row := &Row{
			LineNumber: lineNumbers[i+1],
			Data:       make(map[string]string, len(headers)),
			RawFields:  record,
		}
		for col, header := range headers {
			if col < len(record) {
				row.Data[header] = d.clean(record[col])
			} else {
				row.Data[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}

func (d *Decoder) readLines(text string) ([][]string, []int) {
	var records [][]string
	var lineNumbers []int
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, strings.Split(line, string(d.delimiter)))
		lineNumbers = append(lineNumbers, i+1)
	}
	return records, lineNumbers
}

func (d *Decoder) readQuoted(text string) ([][]string, []int, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = d.delimiter
	r.LazyQuotes = true
	r.TrimLeadingSpace = d.trimSpace
	r.FieldsPerRecord = -1

	var records [][]string
	var lineNumbers []int
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var line int
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return nil, nil, RowError{
				Row:     line,
				Code:    ErrCodeDecodeMalformedRow,
				Message: err.Error(),
			}
		}
		line, _ := r.FieldPos(0)
		records = append(records, record)
		lineNumbers = append(lineNumbers, line)
	}
	return records, lineNumbers, nil
}

// clean strips whitespace and one pair of surrounding quotes
func (d *Decoder) clean(field string) string {
	if d.trimSpace {
		field = strings.TrimSpace(field)
	}
	field = strings.TrimSuffix(strings.TrimPrefix(field, `"`), `"`)
	if d.trimSpace {
		field = strings.TrimSpace(field)
	}
	return field
}

// normalize strips a UTF-8 BOM and decodes Windows-1252 input to UTF-8.
func normalize(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: %w", ErrNoDataRows, RowError{Code: ErrCodeDecodeEmptyFile, Message: "CSV file is empty"})
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", RowError{Code: ErrCodeDecodeInvalidFile, Message: "unsupported file encoding"}
	}
	return string(decoded), nil
}
