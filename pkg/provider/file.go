package provider

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileRecord is the on-disk shape of a module entry
type fileRecord struct {
	Name   string `yaml:"name"`
	Desc   string `yaml:"desc"`
	Active *bool  `yaml:"active,omitempty"`
}

// FileProvider serves modules from a YAML file. Entries without an
// explicit active flag are treated as active.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider reading the given YAML file
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Name implements Provider.Name
func (p *FileProvider) Name() string {
	return "file"
}

// ListModules implements Provider.ListModules
func (p *FileProvider) ListModules(ctx context.Context, q Query) ([]Module, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modules file: %w", err)
	}

	var records []fileRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse modules file: %w", err)
	}

	modules := make([]Module, 0, len(records))
	for _, r := range records {
		if q.ActiveOnly && r.Active != nil && !*r.Active {
			continue
		}
		modules = append(modules, Module{Name: r.Name, Desc: r.Desc})
	}

	return Normalize(modules)
}
