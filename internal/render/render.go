// Package render produces JSON and Markdown output for a score report.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/issuescore/internal/board"
	"github.com/dshills/issuescore/internal/score"
)

// Report is the top-level output object.
type Report struct {
	Tool    string         `json:"tool"`
	Version string         `json:"version"`
	Input   Input          `json:"input"`
	Result  *score.Result  `json:"result"`
	Sync    *board.Outcome `json:"sync,omitempty"`
}

// Input describes the scored body.
type Input struct {
	Source string `json:"source"`
	Hash   string `json:"hash"`
	Title  string `json:"title,omitempty"`
}

// JSON renders a report as indented JSON with a trailing newline.
func JSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render.JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// Markdown renders a report as a Markdown summary.
func Markdown(r *Report) string {
	var b strings.Builder

	b.WriteString("# Issue Priority Score\n\n")
	if r.Input.Title != "" {
		fmt.Fprintf(&b, "**Issue:** %s\n", r.Input.Title)
	}
	fmt.Fprintf(&b, "**Source:** %s\n", r.Input.Source)
	if r.Result == nil {
		b.WriteString("\nNo score computed.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "**Form:** %s\n", r.Result.Form)
	fmt.Fprintf(&b, "**Score:** %.2f\n\n", r.Result.Score)

	b.WriteString("| Field | Answer | Weight | Multiplier |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, f := range r.Result.Fields {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f |\n", f.Name, escapeCell(f.Answer), f.Weight, f.Multiplier)
	}
	b.WriteString("\n")

	if len(r.Result.Unanswered) > 0 {
		b.WriteString("## Unanswered Questions\n\n")
		for _, q := range r.Result.Unanswered {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	if r.Sync != nil {
		b.WriteString("## Board\n\n")
		verb := "updated"
		if r.Sync.Created {
			verb = "created"
		}
		fmt.Fprintf(&b, "Item %s %s with score %.2f\n\n", r.Sync.ItemID, verb, r.Sync.Score)
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
