package projects

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/model"
)

const (
	numFields    = 8
	colID        = 0
	colName      = 1
	colManager   = 2
	colPartner   = 3
	colCategory  = 4
	colStatus    = 5
	colBudget    = 6
	colStartYear = 7
)

// ReadProjects reads projects.csv.
func ReadProjects(r io.Reader) ([]model.Project, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading projects CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var projects []model.Project
	for i, rec := range records[1:] {
		p, err := UnmarshalProject(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// WriteProjects writes projects.csv.
func WriteProjects(w io.Writer, projects []model.Project) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"project_id", "name", "manager", "partner", "category", "status", "budget", "start_year"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range projects {
		if err := cw.Write(MarshalProject(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalProject converts a Project to a CSV row.
func MarshalProject(p model.Project) []string {
	row := make([]string, numFields)
	row[colID] = p.ID
	row[colName] = p.Name
	row[colManager] = p.Manager
	row[colPartner] = p.Partner
	row[colCategory] = p.Category
	row[colStatus] = string(p.Status)
	if !p.Budget.IsZero() {
		row[colBudget] = p.Budget.StringFixed(2)
	}
	if p.StartYear != 0 {
		row[colStartYear] = strconv.Itoa(p.StartYear)
	}
	return row
}

// UnmarshalProject converts a CSV row to a Project.
func UnmarshalProject(record []string) (model.Project, error) {
	if len(record) != numFields {
		return model.Project{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Project{}, fmt.Errorf("missing project_id")
	}

	var budget decimal.Decimal
	var err error
	if record[colBudget] != "" {
		budget, err = decimal.NewFromString(record[colBudget])
		if err != nil {
			return model.Project{}, fmt.Errorf("parsing budget %q: %w", record[colBudget], err)
		}
	}

	var startYear int
	if record[colStartYear] != "" {
		startYear, err = strconv.Atoi(record[colStartYear])
		if err != nil {
			return model.Project{}, fmt.Errorf("parsing start_year %q: %w", record[colStartYear], err)
		}
	}

	return model.Project{
		ID:        record[colID],
		Name:      record[colName],
		Manager:   record[colManager],
		Partner:   record[colPartner],
		Category:  record[colCategory],
		Status:    model.ProjectStatus(record[colStatus]),
		Budget:    budget,
		StartYear: startYear,
	}, nil
}
