package model

import "github.com/shopspring/decimal"

// ProjectStatus tracks where a research project is in its lifecycle.
type ProjectStatus string

const (
	ProjectStatusApplying  ProjectStatus = "applying"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusSuspended ProjectStatus = "suspended"
	ProjectStatusClosed    ProjectStatus = "closed"
)

// Project represents a row in projects.csv.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Manager   string          `json:"manager"`
	Partner   string          `json:"partner"` // partner organization, usually the funding bank or company
	Category  string          `json:"category"`
	Status    ProjectStatus   `json:"status"`
	Budget    decimal.Decimal `json:"budget"`
	StartYear int             `json:"start_year"`
}
