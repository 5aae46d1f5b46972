package projects

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/labfund/fundops/internal/model"
)

// Dir and File locate the project registry inside a workspace.
const (
	Dir  = "projects"
	File = "projects.csv"
)

// Service provides read-only lookup over the project registry. Every method
// returns copies, so callers never share the underlying slice.
type Service struct {
	projects []model.Project
	byID     map[string]model.Project
}

// NewService creates a Service from a slice of projects.
func NewService(projects []model.Project) *Service {
	own := make([]model.Project, len(projects))
	copy(own, projects)
	byID := make(map[string]model.Project, len(own))
	for _, p := range own {
		byID[p.ID] = p
	}
	return &Service{projects: own, byID: byID}
}

// Load reads projects/projects.csv from a workspace root and returns a Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, Dir, File)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening project registry: %w", err)
	}
	defer f.Close()

	projects, err := ReadProjects(f)
	if err != nil {
		return nil, fmt.Errorf("reading project registry: %w", err)
	}
	return NewService(projects), nil
}

// All returns all projects.
func (s *Service) All() []model.Project {
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Get returns a project by ID.
func (s *Service) Get(id string) (model.Project, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Exists reports whether a project ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByStatus returns all projects in the given status.
func (s *Service) ByStatus(status model.ProjectStatus) []model.Project {
	var result []model.Project
	for _, p := range s.projects {
		if p.Status == status {
			result = append(result, p)
		}
	}
	return result
}

// Save writes the registry to projects/projects.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating projects dir: %w", err)
	}

	path := filepath.Join(dir, File)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating project registry file: %w", err)
	}
	defer f.Close()

	if err := WriteProjects(f, s.projects); err != nil {
		return fmt.Errorf("writing project registry: %w", err)
	}
	return nil
}
