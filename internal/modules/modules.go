// Package modules loads the extension modules that contribute dashlets.
//
// Every module is described by one YAML manifest:
//
//	name: monitoring
//	dashboards:
//	  - name: Overview
//	    label: Current Incidents
//	    dashlets:
//	      - name: Service Problems
//	        url: monitoring/list/services?service_problem=1
//	        priority: 1
//	dashlets:
//	  - name: Tactical Overview
//	    url: monitoring/tactical
//	    description: Summary of host and service states
package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dashlet is a dashlet declaration.
type Dashlet struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`
}

// Title returns the label, falling back to the name.
func (d Dashlet) Title() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Pane is a dashboard pane declared by a module together with its dashlets.
type Pane struct {
	Name     string    `yaml:"name"`
	Label    string    `yaml:"label"`
	Dashlets []Dashlet `yaml:"dashlets"`
}

// Title returns the label, falling back to the name.
func (p Pane) Title() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Name
}

// Module is one loaded extension module.
type Module struct {
	Name       string    `yaml:"name"`
	Dashboards []Pane    `yaml:"dashboards"`
	Dashlets   []Dashlet `yaml:"dashlets"`
}

// Registry exposes the loaded modules.
type Registry interface {
	LoadedModules() []Module
}

// Static is a Registry over a fixed module list.
type Static []Module

// LoadedModules returns the modules sorted by name.
func (s Static) LoadedModules() []Module {
	out := make([]Module, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse decodes and validates one manifest.
func Parse(data []byte) (Module, error) {
	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Module{}, fmt.Errorf("decode manifest: %w", err)
	}
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return Module{}, err
	}
	return m, nil
}

// Validate checks names are present and unique in their scope.
func (m Module) Validate() error {
	if m.Name == "" {
		return errors.New("module name is required")
	}

	panes := make(map[string]struct{}, len(m.Dashboards))
	for _, p := range m.Dashboards {
		if p.Name == "" {
			return fmt.Errorf("module %s: dashboard name is required", m.Name)
		}
		if _, dup := panes[p.Name]; dup {
			return fmt.Errorf("module %s: duplicate dashboard %q", m.Name, p.Name)
		}
		panes[p.Name] = struct{}{}
		if err := validateDashlets(m.Name+"/"+p.Name, p.Dashlets); err != nil {
			return err
		}
	}
	return validateDashlets(m.Name, m.Dashlets)
}

func validateDashlets(scope string, dashlets []Dashlet) error {
	seen := make(map[string]struct{}, len(dashlets))
	for _, d := range dashlets {
		if d.Name == "" {
			return fmt.Errorf("%s: dashlet name is required", scope)
		}
		if d.URL == "" {
			return fmt.Errorf("%s: dashlet %q has no url", scope, d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%s: duplicate dashlet %q", scope, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// LoadDir reads every *.yml and *.yaml manifest in dir. A missing directory
// yields an empty registry.
func LoadDir(dir string) (Static, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Static{}, nil
		}
		return nil, fmt.Errorf("read modules directory: %w", err)
	}

	var out Static
	names := make(map[string]string)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		m, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := names[m.Name]; dup {
			return nil, fmt.Errorf("module %s declared by both %s and %s", m.Name, prev, path)
		}
		names[m.Name] = path
		out = append(out, m)
	}
	return out, nil
}
