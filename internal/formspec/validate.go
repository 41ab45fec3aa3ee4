package formspec

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// weightTolerance is how far the multipliers may drift from 1.0.
const weightTolerance = 0.001

// ValidationError describes a single problem with a form table.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidationErrors collects every problem found in a form.
type ValidationErrors []ValidationError

func (vs ValidationErrors) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a Form for structural validity.
func Validate(f *Form) ValidationErrors {
	var errs ValidationErrors

	if f.Name == "" {
		errs = append(errs, ValidationError{"name", "required"})
	}
	if f.Scale.Min < 1 || f.Scale.Max < f.Scale.Min {
		errs = append(errs, ValidationError{"scale", fmt.Sprintf("invalid range %d-%d", f.Scale.Min, f.Scale.Max)})
	}
	if len(f.Fields) == 0 {
		errs = append(errs, ValidationError{"fields", "at least one field required"})
	}

	names := make(map[string]bool)
	for i, fld := range f.Fields {
		prefix := fmt.Sprintf("fields[%d]", i)
		if fld.Name == "" {
			errs = append(errs, ValidationError{prefix + ".name", "required"})
		} else if names[fld.Name] {
			errs = append(errs, ValidationError{prefix + ".name", fmt.Sprintf("duplicate field: %q", fld.Name)})
		} else {
			names[fld.Name] = true
		}
		if len(fld.Questions()) == 0 {
			errs = append(errs, ValidationError{prefix + ".question", "required"})
		}
		if len(fld.Answers) == 0 {
			errs = append(errs, ValidationError{prefix + ".answers", "at least one answer required"})
		}

		answers := make([]string, 0, len(fld.Answers))
		for a := range fld.Answers {
			answers = append(answers, a)
		}
		sort.Strings(answers)
		for _, a := range answers {
			w := fld.Answers[a]
			if a == "" {
				errs = append(errs, ValidationError{prefix + ".answers", "empty answer key"})
			}
			if w < f.Scale.Min || w > f.Scale.Max {
				errs = append(errs, ValidationError{
					fmt.Sprintf("%s.answers[%q]", prefix, a),
					fmt.Sprintf("weight %d outside scale %d-%d", w, f.Scale.Min, f.Scale.Max),
				})
			}
		}

		if fld.Name != "" {
			if _, ok := f.Weights[fld.Name]; !ok {
				errs = append(errs, ValidationError{"weights." + fld.Name, "missing multiplier"})
			}
		}
	}

	keys := make([]string, 0, len(f.Weights))
	for k := range f.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		m := f.Weights[k]
		if !names[k] {
			errs = append(errs, ValidationError{"weights." + k, "no such field"})
		}
		if m < 0 {
			errs = append(errs, ValidationError{"weights." + k, fmt.Sprintf("negative multiplier %.3f", m)})
		}
		sum += m
	}
	if len(f.Weights) > 0 && math.Abs(sum-1.0) > weightTolerance {
		errs = append(errs, ValidationError{"weights", fmt.Sprintf("multipliers sum to %.3f, want 1.0", sum)})
	}

	return errs
}
