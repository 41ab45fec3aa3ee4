// Package score turns parsed form answers into a weighted priority score.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/dshills/issuescore/internal/formspec"
	"github.com/dshills/issuescore/internal/issuebody"
)

// ErrMissingOrUnrecognizedField matches every *FieldError via errors.Is.
var ErrMissingOrUnrecognizedField = errors.New("missing or unrecognized field")

// Reason says why a field could not be scored.
type Reason string

const (
	ReasonMissing      Reason = "missing"
	ReasonUnrecognized Reason = "unrecognized"
)

// FieldError reports the first required field that had no usable answer.
// No partial score accompanies it.
type FieldError struct {
	Field  string
	Answer string
	Reason Reason
}

func (e *FieldError) Error() string {
	if e.Reason == ReasonUnrecognized {
		return fmt.Sprintf("field %q: unrecognized answer %q", e.Field, e.Answer)
	}
	return fmt.Sprintf("field %q: no answer", e.Field)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrMissingOrUnrecognizedField
}

// Result is a computed priority score with the per-field breakdown.
type Result struct {
	Form       string       `json:"form"`
	Score      float64      `json:"score"`
	Fields     []FieldScore `json:"fields"`
	Unanswered []string     `json:"unanswered,omitempty"`
}

// FieldScore records how one field contributed.
type FieldScore struct {
	Name       string  `json:"name"`
	Answer     string  `json:"answer"`
	Weight     int     `json:"weight"`
	Multiplier float64 `json:"multiplier"`
}

// Compute scores answers against form. Fields are evaluated in form order and
// the first one that is absent, blank or not in its answer table fails the
// whole computation with a *FieldError.
//
// score = sum(weight[field] * multiplier[field]), rounded to two decimals.
func Compute(a *issuebody.Answers, form *formspec.Form) (*Result, error) {
	if form == nil {
		return nil, errors.New("score.Compute: nil form")
	}

	res := &Result{Form: form.Name}
	var total float64
	for _, fld := range form.Fields {
		answer, _ := issuebody.Extract(a, fld.Questions()...)
		if answer == "" {
			return nil, &FieldError{Field: fld.Name, Reason: ReasonMissing}
		}
		w, ok := fld.Weight(answer)
		if !ok {
			return nil, &FieldError{Field: fld.Name, Answer: answer, Reason: ReasonUnrecognized}
		}
		m := form.Weights[fld.Name]
		total += float64(w) * m
		res.Fields = append(res.Fields, FieldScore{
			Name:       fld.Name,
			Answer:     answer,
			Weight:     w,
			Multiplier: m,
		})
	}

	res.Score = Round(total)
	if a != nil {
		res.Unanswered = a.Unanswered()
	}
	return res, nil
}

// Body parses raw with the form's known questions and scores it.
func Body(raw string, form *formspec.Form) (*issuebody.Answers, *Result, error) {
	if form == nil {
		return nil, nil, errors.New("score.Body: nil form")
	}
	a := issuebody.Parse(raw, form.Questions())
	res, err := Compute(a, form)
	return a, res, err
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
