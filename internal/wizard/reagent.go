package wizard

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/labfund/fundops/internal/model"
)

// Units accepted for reagent stock.
var StockUnits = []interface{}{"mg", "g", "kg", "mL", "L", "瓶", "盒", "支"}

// ReagentForm is the reagent inventory entry form.
type ReagentForm struct {
	Reagent  ReagentInfo     `json:"reagent"`
	Stock    ReagentStock    `json:"stock"`
	Supplier ReagentSupplier `json:"supplier"`
}

type ReagentInfo struct {
	ProjectID     string `json:"project_id"`
	Name          string `json:"name"`
	CAS           string `json:"cas"`
	Specification string `json:"specification"`
}

type ReagentStock struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Location string `json:"location"`
}

type ReagentSupplier struct {
	Name         string `json:"name"`
	PurchaseDate string `json:"purchase_date"`
	UnitPrice    string `json:"unit_price"`
}

// NewReagentWizard returns the three-step reagent entry wizard.
func NewReagentWizard(deps Deps) *Wizard[ReagentForm] {
	steps := []Step[ReagentForm]{
		{
			Title:  "试剂信息",
			Labels: map[string]string{"project_id": "项目", "name": "试剂名称", "cas": "CAS号", "specification": "规格"},
			Validate: func(f *ReagentForm) error {
				r := &f.Reagent
				return validation.ValidateStruct(r,
					validation.Field(&r.ProjectID, validation.Required, lookupRule("validation_unknown_project", "unknown project", deps.projectExists)),
					validation.Field(&r.Name, validation.Required),
					validation.Field(&r.CAS, casRule),
					validation.Field(&r.Specification, validation.Required),
				)
			},
		},
		{
			Title:  "库存信息",
			Labels: map[string]string{"quantity": "数量", "unit": "单位", "location": "存放位置"},
			Validate: func(f *ReagentForm) error {
				s := &f.Stock
				return validation.ValidateStruct(s,
					validation.Field(&s.Quantity, validation.Required, quantityRule),
					validation.Field(&s.Unit, validation.Required, validation.In(StockUnits...)),
					validation.Field(&s.Location, validation.Required),
				)
			},
		},
		{
			Title:  "供应商",
			Labels: map[string]string{"name": "供应商", "purchase_date": "采购日期", "unit_price": "单价"},
			Validate: func(f *ReagentForm) error {
				s := &f.Supplier
				return validation.ValidateStruct(s,
					validation.Field(&s.Name, validation.Required),
					validation.Field(&s.PurchaseDate, validation.Required, dateRule),
					validation.Field(&s.UnitPrice, validation.Required, amountRule),
				)
			},
		},
	}
	w := New(string(model.KindReagent), steps, ReagentForm{})
	if deps.Now != nil {
		w.now = deps.Now
	}
	return w
}

// ReagentFlow submits reagent entry forms. The entry amount is quantity times
// unit price rounded to cents.
func ReagentFlow(deps Deps) Flow {
	return flow[ReagentForm]{
		kind:   model.KindReagent,
		deps:   deps,
		create: func() *Wizard[ReagentForm] { return NewReagentWizard(deps) },
		toEntry: func(f ReagentForm) (model.Entry, error) {
			total := mustDecimal(f.Stock.Quantity).Mul(mustDecimal(f.Supplier.UnitPrice)).Round(2)
			notes := fmt.Sprintf("%s %s %s%s", f.Reagent.Name, f.Reagent.Specification, f.Stock.Quantity, f.Stock.Unit)
			if f.Reagent.CAS != "" {
				notes += " CAS " + f.Reagent.CAS
			}
			return model.Entry{
				Date:         mustDate(f.Supplier.PurchaseDate),
				ProjectID:    f.Reagent.ProjectID,
				Kind:         model.KindReagent,
				Amount:       total,
				Counterparty: f.Supplier.Name,
				Notes:        notes,
			}, nil
		},
	}
}
