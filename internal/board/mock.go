package board

import (
	"context"
	"fmt"
)

// Mock is an in-memory Board test double. Items maps issue ID to item ID;
// the *Err fields force the matching call to fail.
type Mock struct {
	Items  map[string]string
	Scores map[string]float64
	Calls  []string

	ResolveErr error
	CreateErr  error
	WriteErr   error
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) ResolveItem(_ context.Context, issueID string) (string, error) {
	m.Calls = append(m.Calls, "resolve:"+issueID)
	if m.ResolveErr != nil {
		return "", m.ResolveErr
	}
	id, ok := m.Items[issueID]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (m *Mock) CreateItem(_ context.Context, issueID string) (string, error) {
	m.Calls = append(m.Calls, "create:"+issueID)
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if m.Items == nil {
		m.Items = make(map[string]string)
	}
	id := fmt.Sprintf("item-%d", len(m.Items)+1)
	m.Items[issueID] = id
	return id, nil
}

func (m *Mock) WriteScore(_ context.Context, itemID, fieldID string, score float64) error {
	m.Calls = append(m.Calls, fmt.Sprintf("write:%s:%s:%.2f", itemID, fieldID, score))
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if m.Scores == nil {
		m.Scores = make(map[string]float64)
	}
	m.Scores[itemID] = score
	return nil
}
