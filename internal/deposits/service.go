package deposits

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/labfund/fundops/internal/model"
)

// Dir and File locate the deposit list inside a workspace.
const (
	Dir  = "deposits"
	File = "deposits.csv"
)

// Service holds the unclaimed bank deposits. Reads return copies.
type Service struct {
	mu       sync.RWMutex
	deposits []model.Deposit
	byRef    map[string]int
}

// NewService creates a Service from a slice of deposits. Later duplicates of a
// reference are dropped.
func NewService(deposits []model.Deposit) *Service {
	s := &Service{byRef: make(map[string]int, len(deposits))}
	for _, d := range deposits {
		if _, dup := s.byRef[d.Reference]; dup {
			continue
		}
		s.byRef[d.Reference] = len(s.deposits)
		s.deposits = append(s.deposits, d)
	}
	return s
}

// Load reads deposits/deposits.csv from a workspace root. A missing file
// yields an empty Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, Dir, File)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening deposits: %w", err)
	}
	defer f.Close()

	deposits, err := ReadDeposits(f)
	if err != nil {
		return nil, fmt.Errorf("reading deposits: %w", err)
	}
	return NewService(deposits), nil
}

// All returns every deposit in insertion order.
func (s *Service) All() []model.Deposit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Deposit, len(s.deposits))
	copy(out, s.deposits)
	return out
}

// Get returns the deposit with the given reference.
func (s *Service) Get(ref string) (model.Deposit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byRef[ref]
	if !ok {
		return model.Deposit{}, false
	}
	return s.deposits[i], true
}

// Add appends deposits, skipping references already present. It returns the
// number of deposits added.
func (s *Service) Add(deposits ...model.Deposit) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, d := range deposits {
		if _, dup := s.byRef[d.Reference]; dup {
			continue
		}
		s.byRef[d.Reference] = len(s.deposits)
		s.deposits = append(s.deposits, d)
		added++
	}
	return added
}

// Len returns the number of deposits.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deposits)
}

// Save writes all deposits, oldest first, to deposits/deposits.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating deposits dir: %w", err)
	}

	all := s.All()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })

	tmp, err := os.CreateTemp(dir, File+".*")
	if err != nil {
		return fmt.Errorf("creating deposits file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteDeposits(tmp, all); err != nil {
		tmp.Close()
		return fmt.Errorf("writing deposits: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing deposits file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, File)); err != nil {
		return fmt.Errorf("replacing deposits file: %w", err)
	}
	return nil
}
