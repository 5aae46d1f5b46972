package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labfund/fundops/internal/id"
	"github.com/labfund/fundops/internal/model"
)

// FileName is the ledger file inside each YYYY/MM directory.
const FileName = "ledger.csv"

// ErrDepositClaimed is returned when appending income for a deposit that is
// already booked in any month.
var ErrDepositClaimed = errors.New("deposit already booked")

// Service provides business logic for the fund ledger.
type Service struct {
	mu       sync.Mutex
	root     string
	projects ProjectChecker
}

// NewService creates a ledger Service.
func NewService(root string, projects ProjectChecker) *Service {
	return &Service{root: root, projects: projects}
}

// Append assigns the next entry ID for the entry's kind and month, validates
// the month with the new entry included and appends it to the month's
// ledger.csv. Returns the stored entry.
func (s *Service) Append(e model.Entry) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	year := e.Date.Year()
	month := int(e.Date.Month())

	if e.Kind == model.KindIncome && e.Reference != "" {
		claims, err := s.claims()
		if err != nil {
			return model.Entry{}, err
		}
		if first, ok := claims[e.Reference]; ok {
			return model.Entry{}, fmt.Errorf("%w: %s as %s", ErrDepositClaimed, e.Reference, first)
		}
	}

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Entry{}, err
	}

	e.EntryID = id.FormatEntryID(e.Kind.Prefix(), year, month, nextSeq(existing, e.Kind))

	all := append(existing, e)
	if verrs := ValidateEntries(all, s.projects, year, month); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.Entry{}, fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.Entry{}, fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return model.Entry{}, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return model.Entry{}, fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendEntries(f, []model.Entry{e}); err != nil {
		return model.Entry{}, fmt.Errorf("appending entry: %w", err)
	}
	return e, nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Entry, error) {
	return readFile(s.monthPath(year, month))
}

func readFile(path string) ([]model.Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return entries, nil
}

// ReadYear reads every month of a year in order.
func (s *Service) ReadYear(year int) ([]model.Entry, error) {
	var out []model.Entry
	for m := 1; m <= 12; m++ {
		entries, err := s.ReadMonth(year, m)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// Claims maps each deposit reference booked as income to the entry that
// booked it, across every month on disk.
func (s *Service) Claims() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims()
}

func (s *Service) claims() (map[string]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", FileName))
	if err != nil {
		return nil, fmt.Errorf("listing ledgers: %w", err)
	}

	out := make(map[string]string)
	for _, path := range paths {
		entries, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Kind != model.KindIncome || e.Reference == "" {
				continue
			}
			if _, ok := out[e.Reference]; !ok {
				out[e.Reference] = e.EntryID
			}
		}
	}
	return out, nil
}

// NextEntrySeq returns the next available sequence number for a kind in a month.
func (s *Service) NextEntrySeq(kind model.EntryKind, year, month int) (int, error) {
	entries, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}
	return nextSeq(entries, kind), nil
}

func nextSeq(entries []model.Entry, kind model.EntryKind) int {
	maxSeq := 0
	for _, e := range entries {
		prefix, _, _, seq, err := id.ParseEntryID(e.EntryID)
		if err != nil || prefix != kind.Prefix() {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), FileName)
}
