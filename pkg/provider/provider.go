package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Field names published by the registry
const (
	FieldName   = "name"
	FieldDesc   = "desc"
	FieldActive = "active"
)

// ErrInvalidRecord is returned when a source yields a record that cannot be listed
var ErrInvalidRecord = errors.New("invalid module record")

// Module is a single listed third-party module
type Module struct {
	Name string `json:"name" yaml:"name"`
	Desc string `json:"desc" yaml:"desc"`
}

// Query selects records from a provider
type Query struct {
	// Fields to project; sources may ignore anything other than name and desc
	Fields []string
	// ActiveOnly restricts results to records flagged active
	ActiveOnly bool
	// SortBy is the ascending sort key. Only FieldName is supported.
	SortBy string
}

// DefaultQuery returns the query used to build the public listing
func DefaultQuery() Query {
	return Query{
		Fields:     []string{FieldName, FieldDesc},
		ActiveOnly: true,
		SortBy:     FieldName,
	}
}

// Validate checks that a query can be served
func (q Query) Validate() error {
	if q.SortBy != "" && q.SortBy != FieldName {
		return fmt.Errorf("unsupported sort field: %s", q.SortBy)
	}
	for _, f := range q.Fields {
		if f != FieldName && f != FieldDesc {
			return fmt.Errorf("unsupported field: %s", f)
		}
	}
	return nil
}

// Provider is a read-only source of module records
type Provider interface {
	// Name identifies the provider in logs and snapshots
	Name() string
	// ListModules returns every record matching the query
	ListModules(ctx context.Context, q Query) ([]Module, error)
}

// Normalize validates records and sorts them ascending by case-folded name,
// with byte order breaking ties. Names are trimmed; an empty or repeated
// name fails the whole batch.
func Normalize(modules []Module) ([]Module, error) {
	out := make([]Module, 0, len(modules))
	seen := make(map[string]struct{}, len(modules))
	for i, m := range modules {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return nil, fmt.Errorf("%w: record %d has an empty name", ErrInvalidRecord, i)
		}
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRecord, m.Name)
		}
		seen[m.Name] = struct{}{}
		out = append(out, m)
	}

	fold := cases.Fold()
	keys := make(map[string]string, len(out))
	for _, m := range out {
		keys[m.Name] = fold.String(m.Name)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := keys[out[i].Name], keys[out[j].Name]
		if ki != kj {
			return ki < kj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
