package statements

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/bankcard"
	"github.com/labfund/fundops/internal/model"
	"github.com/labfund/fundops/internal/textnorm"
)

// GenericParser reads any statement export that names its columns. Columns
// are found by header, in any order, under their English or common Chinese
// bank-export names; extra columns are ignored.
type GenericParser struct{}

const (
	fieldDate = iota
	fieldBank
	fieldSummary
	fieldAmount
	fieldReference
	numGenericFields
)

var genericFieldNames = [numGenericFields]string{"date", "bank", "summary", "amount", "reference"}

// genericAliases maps normalised header cells to fields.
var genericAliases = map[string]int{
	"date": fieldDate, "交易日期": fieldDate, "记账日期": fieldDate, "日期": fieldDate,
	"bank": fieldBank, "对方开户行": fieldBank, "开户行": fieldBank, "付款行": fieldBank,
	"summary": fieldSummary, "摘要": fieldSummary, "用途": fieldSummary, "附言": fieldSummary,
	"amount": fieldAmount, "金额": fieldAmount, "收入金额": fieldAmount, "贷方金额": fieldAmount,
	"reference": fieldReference, "流水号": fieldReference, "交易流水号": fieldReference, "凭证号": fieldReference,
}

// Accepted date layouts, tried in order.
var genericDateFormats = []string{"2006-01-02", "2006/01/02", "20060102", "2006-01-02 15:04:05", "2006年01月02日"}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Accepts reports whether every field has a column in header.
func (p *GenericParser) Accepts(header []string) bool {
	_, err := locateColumns(header)
	return err == nil
}

// Parse reads a statement. Rows with an empty or non-positive amount are
// outgoing and skipped, since only incoming transfers can be claimed. A bad
// row fails the whole file.
func (p *GenericParser) Parse(r io.Reader) ([]model.Deposit, error) {
	cr, err := newReader(r)
	if err != nil {
		return nil, err
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading statement header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var out []model.Deposit
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading statement: %w", err)
		}
		d, ok, err := parseGenericRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if ok {
			out = append(out, d)
		}
	}
}

func locateColumns(header []string) ([numGenericFields]int, error) {
	var cols [numGenericFields]int
	for i := range cols {
		cols[i] = -1
	}
	for i, cell := range header {
		if f, ok := genericAliases[textnorm.Normalize(cell)]; ok && cols[f] < 0 {
			cols[f] = i
		}
	}

	var missing []string
	for f, i := range cols {
		if i < 0 {
			missing = append(missing, genericFieldNames[f])
		}
	}
	if missing != nil {
		return cols, fmt.Errorf("statement header missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

var errMissingReference = errors.New("missing reference")

func parseGenericRow(rec []string, cols [numGenericFields]int) (model.Deposit, bool, error) {
	cell := func(f int) string {
		if cols[f] >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[cols[f]])
	}

	raw := strings.NewReplacer(",", "", "¥", "", "￥", "").Replace(cell(fieldAmount))
	if raw == "" {
		return model.Deposit{}, false, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Deposit{}, false, fmt.Errorf("parsing amount %q: %w", cell(fieldAmount), err)
	}
	if !amount.IsPositive() {
		return model.Deposit{}, false, nil
	}

	date, err := parseDate(cell(fieldDate))
	if err != nil {
		return model.Deposit{}, false, err
	}

	ref := cell(fieldReference)
	if ref == "" {
		return model.Deposit{}, false, errMissingReference
	}

	bank := cell(fieldBank)
	issuer, _ := bankcard.CanonicalBankName(bank)

	return model.Deposit{
		Reference:   ref,
		Date:        date,
		BankName:    bank,
		Summary:     cell(fieldSummary),
		Amount:      amount,
		IssuingBank: issuer,
	}, true, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range genericDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unsupported layout", s)
}
