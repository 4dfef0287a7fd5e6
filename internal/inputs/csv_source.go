// Package inputs decodes transaction records from CSV files.
//
// The expected header names the columns type, client, tx and amount in any
// order. Fields are trimmed, and the amount column may be empty or missing
// for dispute, resolve and chargeback rows.
package inputs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

var requiredColumns = []string{"type", "client", "tx"}

// DecodeError reports a row that could not be turned into a record.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CSVSource streams records from a CSV reader, one row per call to Next.
type CSVSource struct {
	reader  *csv.Reader
	closer  io.Closer
	columns map[string]int
	line    int
}

// Open opens the file at path. The returned error wraps fs.ErrNotExist when
// the file is missing.
func Open(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	source, err := NewCSVSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	source.closer = f
	return source, nil
}

// NewCSVSource reads the header from r.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DecodeError{Line: 1, Err: errors.New("missing header")}
		}
		return nil, &DecodeError{Line: 1, Err: err}
	}

	// spreadsheet exports often start with a byte order mark
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, &DecodeError{Line: 1, Err: fmt.Errorf("missing column %q", name)}
		}
	}

	return &CSVSource{reader: reader, columns: columns, line: 1}, nil
}

// Next decodes the next row. It returns io.EOF at the end of the input.
func (s *CSVSource) Next(_ context.Context) (models.Transaction, error) {
	row, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Transaction{}, io.EOF
		}
		s.line++
		return models.Transaction{}, &DecodeError{Line: s.line, Err: err}
	}
	s.line, _ = s.reader.FieldPos(0)

	tx, err := s.decode(row)
	if err != nil {
		return models.Transaction{}, &DecodeError{Line: s.line, Err: err}
	}
	return tx, nil
}

// Line is the input line of the last row returned by Next.
func (s *CSVSource) Line() int { return s.line }

func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *CSVSource) decode(row []string) (models.Transaction, error) {
	kind, err := models.ParseTransactionType(s.field(row, "type"))
	if err != nil {
		return models.Transaction{}, err
	}

	client, err := strconv.ParseUint(s.field(row, "client"), 10, 16)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid client: %w", err)
	}

	id, err := strconv.ParseUint(s.field(row, "tx"), 10, 32)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid tx: %w", err)
	}

	var amount *models.Amount
	if raw := s.field(row, "amount"); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		amount = &value
	}

	return models.NewTransaction(kind, models.ClientID(client), models.TransactionID(id), amount), nil
}

// field returns the trimmed value of column name, or "" when the row is too short.
func (s *CSVSource) field(row []string, name string) string {
	i, ok := s.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var _ interfaces.RecordSource = (*CSVSource)(nil)
