package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/model"
)

// Header is the CSV header for ledger.csv.
const Header = "entry_id,date,project_id,kind,amount,management_fee,counterparty,reference,bank_account,notes"

const (
	numFields   = 10
	dateFormat  = "2006-01-02"
	colEntryID  = 0
	colDate     = 1
	colProject  = 2
	colKind     = 3
	colAmount   = 4
	colFee      = 5
	colCparty   = 6
	colRef      = 7
	colBankAcct = 8
	colNotes    = 9
)

// ReadEntries reads all entries from a ledger.csv reader.
func ReadEntries(r io.Reader) ([]model.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to a ledger.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendEntries appends entries to an existing ledger.csv writer (no header).
func AppendEntries(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e model.Entry) []string {
	row := make([]string, numFields)
	row[colEntryID] = e.EntryID
	row[colDate] = e.Date.Format(dateFormat)
	row[colProject] = e.ProjectID
	row[colKind] = string(e.Kind)
	row[colAmount] = e.Amount.String()
	if !e.ManagementFee.IsZero() {
		row[colFee] = e.ManagementFee.String()
	}
	row[colCparty] = e.Counterparty
	row[colRef] = e.Reference
	row[colBankAcct] = e.BankAccount
	row[colNotes] = e.Notes
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (model.Entry, error) {
	if len(record) != numFields {
		return model.Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var fee decimal.Decimal
	if record[colFee] != "" {
		fee, err = decimal.NewFromString(record[colFee])
		if err != nil {
			return model.Entry{}, fmt.Errorf("parsing management_fee %q: %w", record[colFee], err)
		}
	}

	return model.Entry{
		EntryID:       record[colEntryID],
		Date:          date,
		ProjectID:     record[colProject],
		Kind:          model.EntryKind(record[colKind]),
		Amount:        amount,
		ManagementFee: fee,
		Counterparty:  record[colCparty],
		Reference:     record[colRef],
		BankAccount:   record[colBankAcct],
		Notes:         record[colNotes],
	}, nil
}
