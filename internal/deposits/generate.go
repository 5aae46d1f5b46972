package deposits

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/bankcard"
	"github.com/labfund/fundops/internal/model"
	"github.com/labfund/fundops/internal/textnorm"
)

// Generate returns n mock deposits dated within the 60 days before now. About
// half of them mention one of the given projects in their summary so the
// matcher has something to find.
func Generate(faker *gofakeit.Faker, n int, projects []model.Project, now time.Time) []model.Deposit {
	banks := bankcard.BankNames()
	out := make([]model.Deposit, 0, n)
	for i := 0; i < n; i++ {
		date := now.AddDate(0, 0, -faker.Number(0, 60))
		d := model.Deposit{
			Reference: fmt.Sprintf("DEP-%s-%04d", date.Format("20060102"), i+1),
			Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location()),
			BankName:  banks[faker.Number(0, len(banks)-1)],
			Summary:   faker.Company() + " " + faker.BuzzWord(),
			Amount:    decimal.NewFromFloat(faker.Price(1000, 500000)).Round(2),
		}
		if len(projects) > 0 && faker.Bool() {
			p := projects[faker.Number(0, len(projects)-1)]
			switch faker.Number(0, 2) {
			case 0:
				d.Summary = p.Name + "项目经费"
			case 1:
				d.Summary = textnorm.Prefix(p.Name, 5) + " 拨款 " + p.Manager
			default:
				d.Summary = p.Manager + " 课题组经费"
			}
			if p.Partner != "" && faker.Bool() {
				d.BankName = p.Partner
			}
		}
		d.IssuingBank, _ = bankcard.CanonicalBankName(d.BankName)
		out = append(out, d)
	}
	return out
}
