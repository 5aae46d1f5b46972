package wizard

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/labfund/fundops/internal/bankcard"
	"github.com/labfund/fundops/internal/model"
)

// Expense categories accepted by the claim wizard.
var ExpenseCategories = []interface{}{"差旅费", "材料费", "设备费", "劳务费", "会议费", "出版费", "其他"}

// ClaimForm is the fund claim (reimbursement) form.
type ClaimForm struct {
	Claimant ClaimClaimant `json:"claimant"`
	Expense  ClaimExpense  `json:"expense"`
	Payee    ClaimPayee    `json:"payee"`
}

type ClaimClaimant struct {
	ProjectID  string `json:"project_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

type ClaimExpense struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Purpose  string `json:"purpose"`
}

type ClaimPayee struct {
	AccountHolder string `json:"account_holder"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

// NewClaimWizard returns the three-step claim wizard.
func NewClaimWizard(deps Deps) *Wizard[ClaimForm] {
	steps := []Step[ClaimForm]{
		{
			Title:  "报销人",
			Labels: map[string]string{"project_id": "项目", "name": "报销人", "department": "所在部门"},
			Validate: func(f *ClaimForm) error {
				c := &f.Claimant
				return validation.ValidateStruct(c,
					validation.Field(&c.ProjectID, validation.Required, lookupRule("validation_unknown_project", "unknown project", deps.projectExists)),
					validation.Field(&c.Name, validation.Required, validation.RuneLength(1, 32)),
					validation.Field(&c.Department, validation.RuneLength(0, 64)),
				)
			},
		},
		{
			Title:  "报销明细",
			Labels: map[string]string{"category": "费用类别", "amount": "报销金额", "purpose": "用途说明"},
			Validate: func(f *ClaimForm) error {
				e := &f.Expense
				return validation.ValidateStruct(e,
					validation.Field(&e.Category, validation.Required, validation.In(ExpenseCategories...)),
					validation.Field(&e.Amount, validation.Required, amountRule),
					validation.Field(&e.Purpose, validation.Required, validation.RuneLength(1, 200)),
				)
			},
		},
		{
			Title:  "收款信息",
			Labels: map[string]string{"account_holder": "收款人", "account_number": "银行卡号", "bank_name": "开户行"},
			Validate: func(f *ClaimForm) error {
				p := &f.Payee
				return validation.ValidateStruct(p,
					validation.Field(&p.AccountHolder, validation.Required),
					validation.Field(&p.AccountNumber, validation.Required, bankAccountRule),
					validation.Field(&p.BankName, validation.Required),
				)
			},
		},
	}
	w := New(string(model.KindClaim), steps, ClaimForm{})
	if deps.Now != nil {
		w.now = deps.Now
	}
	return w
}

// SetAccountNumber stores the payee's card number and, when the number is
// valid, fills in the issuing bank. The validation result is returned so
// callers can show it inline.
func SetAccountNumber(w *Wizard[ClaimForm], raw string) bankcard.Result {
	res := bankcard.Validate(raw)
	w.Update(func(f *ClaimForm) {
		f.Payee.AccountNumber = raw
		if res.Valid {
			f.Payee.BankName = res.BankName
		}
	})
	return res
}

// ClaimFlow submits claim forms.
func ClaimFlow(deps Deps) Flow {
	return flow[ClaimForm]{
		kind:   model.KindClaim,
		deps:   deps,
		create: func() *Wizard[ClaimForm] { return NewClaimWizard(deps) },
		toEntry: func(f ClaimForm) (model.Entry, error) {
			return model.Entry{
				Date:         deps.now(),
				ProjectID:    f.Claimant.ProjectID,
				Kind:         model.KindClaim,
				Amount:       mustDecimal(f.Expense.Amount),
				Counterparty: f.Payee.AccountHolder,
				BankAccount:  bankcard.Mask(f.Payee.AccountNumber),
				Notes:        f.Expense.Category + ": " + f.Expense.Purpose,
			}, nil
		},
	}
}
