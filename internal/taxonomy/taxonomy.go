// Package taxonomy loads the spending categories offered in the form.
package taxonomy

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"inflation/internal/core"
)

// File is the structure of a categories YAML file:
//
//	categories:
//	  - name: Food
//	    subcategories: [Bread, Rice]
type File struct {
	Categories []core.Category `yaml:"categories"`
}

// Load reads the categories file at path. An empty path yields the built-in
// categories.
func Load(path string) ([]core.Category, error) {
	if path == "" {
		return core.DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	cats, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

// Parse decodes and validates categories YAML. Unknown keys are rejected.
func Parse(data []byte) ([]core.Category, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, errors.New("no categories defined")
	}

	seen := make(map[string]bool, len(f.Categories))
	out := make([]core.Category, 0, len(f.Categories))
	for i, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[key] = true

		subs := make([]string, 0, len(c.Subcategories))
		for _, s := range c.Subcategories {
			if s = strings.TrimSpace(s); s != "" {
				subs = append(subs, s)
			}
		}
		out = append(out, core.Category{Name: name, Subcategories: subs})
	}
	return out, nil
}

// Find returns the category with the given name, ignoring case.
func Find(cats []core.Category, name string) (core.Category, bool) {
	for _, c := range cats {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return core.Category{}, false
}
