package taxrules

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

//go:embed data/*.yaml data/schema.json
var embedded embed.FS

const schemaURL = "taxrules.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func tableSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := embedded.ReadFile("data/schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("read schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Registry holds rule tables keyed by tax year. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[int]*Table
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[int]*Table)}
}

// Default returns a registry loaded with the tables shipped in the binary.
func Default() (*Registry, error) {
	r := NewRegistry()
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	if err := r.LoadFS(sub); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDir loads every <year>.yaml file of dir, replacing tables for years
// already registered.
func (r *Registry) LoadDir(dir string) error {
	return r.LoadFS(os.DirFS(dir))
}

func (r *Registry) LoadFS(fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return err
	}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		table, err := Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if stem := strings.TrimSuffix(filepath.Base(name), ".yaml"); stem != strconv.Itoa(table.Year) {
			return fmt.Errorf("%s: file declares year %d", name, table.Year)
		}
		r.Register(table)
	}
	return nil
}

// Register adds or replaces the table for table.Year.
func (r *Registry) Register(table *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[table.Year] = table
}

func (r *Registry) Years() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	years := make([]int, 0, len(r.tables))
	for y := range r.tables {
		years = append(years, y)
	}
	return years
}

// Table returns the rules for a year.
func (r *Registry) Table(year int) (*Table, error) {
	r.mu.RLock()
	table, ok := r.tables[year]
	r.mu.RUnlock()
	if !ok {
		return nil, dto.NewValidationError(dto.ErrUnsupportedTaxYear, "year", strconv.Itoa(year))
	}
	return table, nil
}

// Lookup returns the year's table together with the rules of one province.
// Unknown codes are an error, never a default.
func (r *Registry) Lookup(year int, province string) (*Table, ProvinceRules, error) {
	table, err := r.Table(year)
	if err != nil {
		return nil, ProvinceRules{}, err
	}
	rules, ok := table.Provinces[strings.ToUpper(strings.TrimSpace(province))]
	if !ok {
		return nil, ProvinceRules{}, dto.NewValidationError(dto.ErrUnknownProvince, "province", fmt.Sprintf("%q", province))
	}
	return table, rules, nil
}

// Parse decodes a YAML rules table, checks it against the schema and
// verifies every bracket schedule.
func Parse(raw []byte) (*Table, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON value types.
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert rules: %w", err)
	}
	var value any
	if err := json.Unmarshal(js, &value); err != nil {
		return nil, fmt.Errorf("convert rules: %w", err)
	}
	sch, err := tableSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(value); err != nil {
		return nil, fmt.Errorf("rules do not match schema: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := checkBrackets("federal", table.Federal.Brackets); err != nil {
		return nil, err
	}
	for code, p := range table.Provinces {
		if err := checkBrackets(code, p.Brackets); err != nil {
			return nil, err
		}
		p.Code = code
		table.Provinces[code] = p
	}
	return &table, nil
}

func checkBrackets(owner string, b Brackets) error {
	if len(b) == 0 {
		return fmt.Errorf("%s: no brackets", owner)
	}
	if b[0].Threshold != 0 {
		return fmt.Errorf("%s: first bracket starts at %v, want 0", owner, b[0].Threshold)
	}
	for i := 1; i < len(b); i++ {
		if b[i].Threshold <= b[i-1].Threshold {
			return fmt.Errorf("%s: bracket %d threshold %v is not above %v", owner, i, b[i].Threshold, b[i-1].Threshold)
		}
	}
	return nil
}
