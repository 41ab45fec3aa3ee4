// Package board defines the project-board boundary the score is written to.
package board

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by ResolveItem when the issue has no item on the board.
var ErrNotFound = errors.New("board: item not found")

// Board is a project-tracking board holding a numeric score field per issue.
type Board interface {
	Name() string
	ResolveItem(ctx context.Context, issueID string) (string, error)
	CreateItem(ctx context.Context, issueID string) (string, error)
	WriteScore(ctx context.Context, itemID, fieldID string, score float64) error
}

// BoundaryError wraps a failure reported by a Board. The caller does not
// interpret it beyond refusing to run the steps that depended on it.
type BoundaryError struct {
	Op  string
	Err error
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("board %s: %v", e.Op, e.Err)
}

func (e *BoundaryError) Unwrap() error { return e.Err }

// Outcome describes what Sync did.
type Outcome struct {
	ItemID  string  `json:"item_id"`
	Created bool    `json:"created"`
	Score   float64 `json:"score"`
}

// Sync writes score to the board item for issueID, creating the item first
// if the board has none. Failures are returned as *BoundaryError without
// retrying, and no later step runs after a failed one.
func Sync(ctx context.Context, b Board, issueID, fieldID string, score float64) (*Outcome, error) {
	if issueID == "" {
		return nil, errors.New("board.Sync: empty issue id")
	}
	if fieldID == "" {
		return nil, errors.New("board.Sync: empty field id")
	}

	out := &Outcome{Score: score}

	itemID, err := b.ResolveItem(ctx, issueID)
	switch {
	case errors.Is(err, ErrNotFound):
		itemID, err = b.CreateItem(ctx, issueID)
		if err != nil {
			return nil, &BoundaryError{Op: "create_item", Err: err}
		}
		out.Created = true
	case err != nil:
		return nil, &BoundaryError{Op: "resolve_item", Err: err}
	}
	if itemID == "" {
		return nil, &BoundaryError{Op: "resolve_item", Err: errors.New("empty item id")}
	}
	out.ItemID = itemID

	if err := b.WriteScore(ctx, itemID, fieldID, score); err != nil {
		return nil, &BoundaryError{Op: "write_score", Err: err}
	}
	return out, nil
}
