package deposits

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/model"
)

// Header is the CSV header for deposits.csv.
const Header = "reference,date,bank_name,summary,amount,issuing_bank"

const (
	numFields      = 6
	legacyFields   = 5 // files written before issuing_bank existed
	dateFormat     = "2006-01-02"
	colRef         = 0
	colDate        = 1
	colBankName    = 2
	colSummary     = 3
	colAmount      = 4
	colIssuingBank = 5
)

// ReadDeposits reads deposits.csv.
func ReadDeposits(r io.Reader) ([]model.Deposit, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading deposits CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.Deposit
	for i, rec := range records[1:] {
		d, err := UnmarshalDeposit(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// WriteDeposits writes deposits.csv including the header.
func WriteDeposits(w io.Writer, deposits []model.Deposit) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, d := range deposits {
		if err := cw.Write(MarshalDeposit(d)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalDeposit converts a Deposit to a CSV row.
func MarshalDeposit(d model.Deposit) []string {
	row := make([]string, numFields)
	row[colRef] = d.Reference
	row[colDate] = d.Date.Format(dateFormat)
	row[colBankName] = d.BankName
	row[colSummary] = d.Summary
	row[colAmount] = d.Amount.StringFixed(2)
	row[colIssuingBank] = d.IssuingBank
	return row
}

// UnmarshalDeposit converts a CSV row to a Deposit.
func UnmarshalDeposit(record []string) (model.Deposit, error) {
	if len(record) != numFields && len(record) != legacyFields {
		return model.Deposit{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colRef] == "" {
		return model.Deposit{}, fmt.Errorf("missing reference")
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Deposit{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Deposit{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	d := model.Deposit{
		Reference: record[colRef],
		Date:      date,
		BankName:  record[colBankName],
		Summary:   record[colSummary],
		Amount:    amount,
	}
	if len(record) == numFields {
		d.IssuingBank = record[colIssuingBank]
	}
	return d, nil
}
