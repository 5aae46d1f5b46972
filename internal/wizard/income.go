package wizard

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/matching"
	"github.com/labfund/fundops/internal/mgmtfee"
	"github.com/labfund/fundops/internal/model"
)

// Funding sources offered in the income basics step.
var FundingSources = []interface{}{"纵向", "横向", "校内"}

// IncomeForm is the fund intake form.
type IncomeForm struct {
	Basic      IncomeBasic      `json:"basic"`
	Deposit    IncomeDeposit    `json:"deposit"`
	Allocation IncomeAllocation `json:"allocation"`
	Confirm    IncomeConfirm    `json:"confirm"`
}

type IncomeBasic struct {
	ProjectID     string `json:"project_id"`
	FundingSource string `json:"funding_source"`
	ContractNo    string `json:"contract_no"`
}

type IncomeDeposit struct {
	Reference   string `json:"reference"`
	Amount      string `json:"amount"`
	ArrivalDate string `json:"arrival_date"`
}

type IncomeAllocation struct {
	FeeRate string          `json:"fee_rate"`
	Rows    []AllocationRow `json:"rows"`
}

// AllocationRow assigns part of the project share to a budget category.
type AllocationRow struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// Validate implements validation.Validatable.
func (r AllocationRow) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Category, validation.Required),
		validation.Field(&r.Amount, validation.Required, amountRule),
	)
}

type IncomeConfirm struct {
	Confirmed bool `json:"confirmed"`
}

// Clone returns a copy with its own allocation rows.
func (f IncomeForm) Clone() IncomeForm {
	if f.Allocation.Rows != nil {
		f.Allocation.Rows = append([]AllocationRow(nil), f.Allocation.Rows...)
	}
	return f
}

var errAllocationSum = validation.NewError("validation_allocation_sum", "allocation rows must add up to the project share")

var errDepositAmount = validation.NewError("validation_deposit_amount", "must equal the deposit amount")

// depositAmountRule requires the entered amount to match the deposit at ref.
// Unknown deposits and unparsable amounts are left to the other rules.
func depositAmountRule(deps Deps, ref string) validation.Rule {
	return validation.By(func(v interface{}) error {
		if deps.Deposits == nil {
			return nil
		}
		dep, ok := deps.Deposits.Get(ref)
		if !ok {
			return nil
		}
		amount, err := parseDecimal(stringValue(v))
		if err != nil || amount.Equal(dep.Amount) {
			return nil
		}
		return errDepositAmount
	})
}

// NewIncomeWizard returns the four-step fund intake wizard.
func NewIncomeWizard(deps Deps) *Wizard[IncomeForm] {
	steps := []Step[IncomeForm]{
		{
			Title:  "基本信息",
			Labels: map[string]string{"project_id": "项目", "funding_source": "经费来源", "contract_no": "合同编号"},
			Validate: func(f *IncomeForm) error {
				b := &f.Basic
				return validation.ValidateStruct(b,
					validation.Field(&b.ProjectID, validation.Required, lookupRule("validation_unknown_project", "unknown project", deps.projectExists)),
					validation.Field(&b.FundingSource, validation.Required, validation.In(FundingSources...)),
					validation.Field(&b.ContractNo, validation.RuneLength(0, 64)),
				)
			},
		},
		{
			Title:  "到账信息",
			Labels: map[string]string{"reference": "到账流水", "amount": "到账金额", "arrival_date": "到账日期"},
			Validate: func(f *IncomeForm) error {
				d := &f.Deposit
				return validation.ValidateStruct(d,
					validation.Field(&d.Reference, validation.Required,
						lookupRule("validation_unknown_deposit", "unknown deposit", deps.depositExists),
						lookupRule("validation_deposit_claimed", "deposit already booked", func(ref string) bool { return !deps.claimed(ref) }),
					),
					validation.Field(&d.Amount, validation.Required, amountRule, depositAmountRule(deps, d.Reference)),
					validation.Field(&d.ArrivalDate, validation.Required, dateRule),
				)
			},
		},
		{
			Title: "经费分配",
			Labels: map[string]string{
				"fee_rate":      "管理费比例",
				"rows":          "分配明细",
				"rows.category": "科目",
				"rows.amount":   "金额",
			},
			Validate: func(f *IncomeForm) error {
				a := &f.Allocation
				err := validation.ValidateStruct(a,
					validation.Field(&a.FeeRate, validation.Required, rateRule),
					validation.Field(&a.Rows, validation.Required),
				)
				if err != nil {
					return err
				}
				alloc, aerr := f.allocate()
				if aerr != nil {
					return nil // the deposit step reports a bad amount
				}
				sum := decimal.Zero
				for _, r := range a.Rows {
					sum = sum.Add(mustDecimal(r.Amount))
				}
				if !sum.Equal(alloc.ProjectShare) {
					return validation.Errors{"rows": errAllocationSum}
				}
				return nil
			},
		},
		{
			Title:  "确认提交",
			Labels: map[string]string{"confirmed": "确认"},
			Validate: func(f *IncomeForm) error {
				c := &f.Confirm
				return validation.ValidateStruct(c,
					validation.Field(&c.Confirmed, validation.Required.Error("must be confirmed")),
				)
			},
		},
	}

	var form IncomeForm
	if !deps.FeeRate.IsZero() {
		form.Allocation.FeeRate = deps.FeeRate.String()
	}
	w := New(string(model.KindIncome), steps, form)
	if deps.Now != nil {
		w.now = deps.Now
	}
	return w
}

func (f IncomeForm) allocate() (mgmtfee.Allocation, error) {
	return mgmtfee.Allocate(f.Basic.ProjectID, mustDecimal(f.Deposit.Amount), mustDecimal(f.Allocation.FeeRate))
}

// Candidates ranks the unclaimed deposits for the project chosen in the
// basics step. Without a known project the deposits come back unscored.
func Candidates(deps Deps, projectID string) []matching.Scored {
	if deps.Deposits == nil {
		return nil
	}
	m := deps.Matcher
	if m == nil {
		m = matching.New(matching.DefaultWeights())
	}
	var project *model.Project
	if deps.Projects != nil {
		if p, ok := deps.Projects.Get(strings.TrimSpace(projectID)); ok {
			project = &p
		}
	}
	return m.Rank(Unclaimed(deps.Deposits.All(), deps.claims()), project)
}

// SelectDeposit fills the deposit step from a known deposit. It returns false
// when the reference is unknown or already booked and leaves the form
// untouched.
func SelectDeposit(w *Wizard[IncomeForm], deps Deps, ref string) bool {
	if deps.Deposits == nil || deps.claimed(ref) {
		return false
	}
	d, ok := deps.Deposits.Get(ref)
	if !ok {
		return false
	}
	w.Update(func(f *IncomeForm) {
		f.Deposit.Reference = d.Reference
		f.Deposit.Amount = d.Amount.StringFixed(2)
		f.Deposit.ArrivalDate = d.Date.Format(dateLayout)
	})
	return true
}

// IncomeFlow submits fund intake forms.
func IncomeFlow(deps Deps) Flow {
	return flow[IncomeForm]{
		kind:   model.KindIncome,
		deps:   deps,
		create: func() *Wizard[IncomeForm] { return NewIncomeWizard(deps) },
		toEntry: func(f IncomeForm) (model.Entry, error) {
			alloc, err := f.allocate()
			if err != nil {
				return model.Entry{}, err
			}
			var counterparty string
			if deps.Deposits != nil {
				if d, ok := deps.Deposits.Get(f.Deposit.Reference); ok {
					counterparty = d.IssuingBank
					if counterparty == "" {
						counterparty = d.BankName
					}
				}
			}
			notes := f.Basic.FundingSource
			if f.Basic.ContractNo != "" {
				notes += " " + f.Basic.ContractNo
			}
			return model.Entry{
				Date:          mustDate(f.Deposit.ArrivalDate),
				ProjectID:     f.Basic.ProjectID,
				Kind:          model.KindIncome,
				Amount:        alloc.Amount,
				ManagementFee: alloc.Fee,
				Counterparty:  counterparty,
				Reference:     f.Deposit.Reference,
				Notes:         notes,
			}, nil
		},
	}
}
