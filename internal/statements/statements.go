// Package statements turns bank statement exports dropped into import/ into
// deposits.
package statements

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labfund/fundops/internal/model"
)

// FormatAuto picks the parser for each file from its header row.
const FormatAuto = "auto"

// ErrUnknownFormat is returned for a format name with no parser, or a file no
// parser accepts.
var ErrUnknownFormat = errors.New("unknown statement format")

// Parser converts one statement export into incoming deposits.
type Parser interface {
	Format() string
	// Accepts reports whether a file starting with header is in this format.
	Accepts(header []string) bool
	Parse(r io.Reader) ([]model.Deposit, error)
}

// Registry holds parsers in registration order; detection tries them in that
// order.
type Registry struct {
	ordered []Parser
	byName  map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, dup := r.byName[key]; dup || key == FormatAuto {
		panic("duplicate parser format: " + key)
	}
	r.byName[key] = p
	r.ordered = append(r.ordered, p)
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.byName[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		names[i] = p.Format()
	}
	return names
}

// Detect returns the first parser accepting header, or nil.
func (r *Registry) Detect(header []string) Parser {
	for _, p := range r.ordered {
		if p.Accepts(header) {
			return p
		}
	}
	return nil
}

// Resolve returns the parser to use for the file at path.
func (r *Registry) Resolve(format, path string) (Parser, error) {
	if !strings.EqualFold(format, FormatAuto) {
		if p := r.Get(format); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownFormat, format, strings.Join(r.Formats(), ", "))
	}

	header, err := readHeader(path)
	if err != nil {
		return nil, err
	}
	if p := r.Detect(header); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%s: %w: header %q", filepath.Base(path), ErrUnknownFormat, strings.Join(header, ","))
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	return r
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newReader wraps r in a CSV reader that skips a leading UTF-8 byte order
// mark, which bank exports often carry.
func newReader(r io.Reader) (*csv.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.TrimLeadingSpace = true
	return cr, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr, err := newReader(f)
	if err != nil {
		return nil, err
	}
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", filepath.Base(path), err)
	}
	return header, nil
}

const (
	importDir    = "import"
	processedDir = "processed"
)

// File is a statement waiting in import/.
type File struct {
	Name string
	Path string
	Size int64
}

// Scan lists the CSV files directly under <root>/import/, sorted by name.
// Hidden files are ignored.
func Scan(root string) ([]File, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, File{Name: name, Path: filepath.Join(dir, name), Size: info.Size()})
	}
	return files, nil
}

// ParseFile runs the file at path through parser.
func ParseFile(parser Parser, path string) ([]model.Deposit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	deposits, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return deposits, nil
}

// MarkProcessed moves import/<name> to import/processed/ and returns the name
// it was stored under. An earlier file of the same name is kept; the new one
// gets a numeric suffix.
func MarkProcessed(root, name string) (string, error) {
	dstDir := filepath.Join(root, importDir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	target := name
	for n := 1; ; n++ {
		_, err := os.Stat(filepath.Join(dstDir, target))
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("checking processed dir: %w", err)
		}
		target = stem + "-" + strconv.Itoa(n) + ext
	}

	if err := os.Rename(filepath.Join(root, importDir, name), filepath.Join(dstDir, target)); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", name, err)
	}
	return target, nil
}
