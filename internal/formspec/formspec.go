// Package formspec loads the issue form tables: which questions feed which
// scored field, what each answer is worth, and how fields are weighted.
package formspec

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/issuescore/internal/issuebody"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// DefaultForm is the built-in form used when none is configured.
const DefaultForm = "priority"

// Form is the static scoring configuration for one issue form.
type Form struct {
	Name        string             `yaml:"name" json:"name"`
	Version     int                `yaml:"version" json:"version"`
	Description string             `yaml:"description" json:"description,omitempty"`
	Scale       Scale              `yaml:"scale" json:"scale"`
	Fields      []Field            `yaml:"fields" json:"fields"`
	Weights     map[string]float64 `yaml:"weights" json:"weights"`
}

// Scale bounds the integer weight any answer may carry.
type Scale struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Field binds a scored dimension to the question(s) that ask for it and the
// answers it recognizes.
type Field struct {
	Name     string         `yaml:"name" json:"name"`
	Question string         `yaml:"question" json:"question"`
	Variants []string       `yaml:"variants" json:"variants,omitempty"`
	Answers  map[string]int `yaml:"answers" json:"answers"`
}

// Questions returns the primary question followed by its variants.
func (f Field) Questions() []string {
	qs := make([]string, 0, 1+len(f.Variants))
	if f.Question != "" {
		qs = append(qs, f.Question)
	}
	return append(qs, f.Variants...)
}

// Weight looks up a normalized answer in the field's table.
func (f Field) Weight(answer string) (int, bool) {
	w, ok := f.Answers[answer]
	return w, ok
}

// Questions returns every question variant of every field, in field order.
// This is the known-question list handed to the body parser.
func (f *Form) Questions() []string {
	var qs []string
	for _, fld := range f.Fields {
		qs = append(qs, fld.Questions()...)
	}
	return qs
}

// Field returns the named field.
func (f *Form) Field(name string) (Field, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// LoadBuiltin loads a built-in form by name.
func LoadBuiltin(name string) (*Form, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("formspec.LoadBuiltin: unknown form %q: %w", name, err)
	}
	f, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("formspec.LoadBuiltin: parse %q: %w", name, err)
	}
	return f, nil
}

// LoadFile loads a deployment-supplied form table and validates it.
func LoadFile(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formspec.LoadFile: %w", err)
	}
	f, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("formspec.LoadFile: parse %s: %w", path, err)
	}
	if errs := Validate(f); len(errs) > 0 {
		return nil, fmt.Errorf("formspec.LoadFile: %s: %w", path, errs)
	}
	return f, nil
}

// List returns the names of all built-in forms.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// decode parses YAML and normalizes answer keys the same way the parser
// normalizes answers, so table lookups are exact.
func decode(data []byte) (*Form, error) {
	var f Form
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i := range f.Fields {
		normalized := make(map[string]int, len(f.Fields[i].Answers))
		for k, v := range f.Fields[i].Answers {
			normalized[issuebody.NormalizeAnswer(k)] = v
		}
		f.Fields[i].Answers = normalized
	}
	return &f, nil
}

// Format renders the form tables as Markdown.
func Format(f *Form) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Form: %s (v%d)\n\n", f.Name, f.Version)
	if f.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(f.Description))
	}
	fmt.Fprintf(&b, "Scale: %d-%d\n\n", f.Scale.Min, f.Scale.Max)

	for _, fld := range f.Fields {
		fmt.Fprintf(&b, "### %s (x%.2f)\n\n", fld.Name, f.Weights[fld.Name])
		for _, q := range fld.Questions() {
			fmt.Fprintf(&b, "- %q\n", q)
		}
		b.WriteString("\n")

		answers := make([]string, 0, len(fld.Answers))
		for a := range fld.Answers {
			answers = append(answers, a)
		}
		sort.Slice(answers, func(i, j int) bool {
			wi, wj := fld.Answers[answers[i]], fld.Answers[answers[j]]
			if wi != wj {
				return wi > wj
			}
			return answers[i] < answers[j]
		})
		for _, a := range answers {
			fmt.Fprintf(&b, "  - %s: %d\n", a, fld.Answers[a])
		}
		b.WriteString("\n")
	}
	return b.String()
}
