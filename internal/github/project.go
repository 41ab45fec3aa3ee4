package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/issuescore/internal/board"
)

const projectItemsQuery = `query($id: ID!, $cursor: String) {
  node(id: $id) {
    ... on Issue {
      projectItems(first: 100, after: $cursor) {
        nodes { id project { id } }
        pageInfo { hasNextPage endCursor }
      }
    }
    ... on PullRequest {
      projectItems(first: 100, after: $cursor) {
        nodes { id project { id } }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

const addItemMutation = `mutation($project: ID!, $content: ID!) {
  addProjectV2ItemById(input: {projectId: $project, contentId: $content}) {
    item { id }
  }
}`

const updateNumberMutation = `mutation($project: ID!, $item: ID!, $field: ID!, $value: Float!) {
  updateProjectV2ItemFieldValue(input: {projectId: $project, itemId: $item, fieldId: $field, value: {number: $value}}) {
    projectV2Item { id }
  }
}`

const projectFieldsQuery = `query($id: ID!) {
  node(id: $id) {
    ... on ProjectV2 {
      title
      fields(first: 100) {
        nodes {
          ... on ProjectV2FieldCommon { id name dataType }
        }
      }
    }
  }
}`

type projectItemsData struct {
	Node *struct {
		ProjectItems struct {
			Nodes []struct {
				ID      string `json:"id"`
				Project struct {
					ID string `json:"id"`
				} `json:"project"`
			} `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"projectItems"`
	} `json:"node"`
}

// ResolveItem finds the board item for an issue node ID. It returns
// board.ErrNotFound when the issue exists but is not on the project.
func (c *Client) ResolveItem(ctx context.Context, issueID string) (string, error) {
	if c.projectID == "" {
		return "", errors.New("resolve item: no project configured")
	}
	vars := map[string]any{"id": issueID}
	for {
		var data projectItemsData
		if err := c.graphQL(ctx, projectItemsQuery, vars, &data); err != nil {
			return "", fmt.Errorf("resolve item: %w", err)
		}
		if data.Node == nil {
			return "", fmt.Errorf("resolve item: no issue with id %q", issueID)
		}
		for _, n := range data.Node.ProjectItems.Nodes {
			if n.Project.ID == c.projectID {
				return n.ID, nil
			}
		}
		page := data.Node.ProjectItems.PageInfo
		if !page.HasNextPage || page.EndCursor == "" {
			return "", board.ErrNotFound
		}
		vars["cursor"] = page.EndCursor
	}
}

// CreateItem adds the issue to the project and returns the new item ID.
func (c *Client) CreateItem(ctx context.Context, issueID string) (string, error) {
	if c.projectID == "" {
		return "", errors.New("create item: no project configured")
	}
	var data struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	vars := map[string]any{"project": c.projectID, "content": issueID}
	if err := c.graphQL(ctx, addItemMutation, vars, &data); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	id := data.AddProjectV2ItemByID.Item.ID
	if id == "" {
		return "", errors.New("create item: response had no item id")
	}
	return id, nil
}

// WriteScore sets a number field on a project item.
func (c *Client) WriteScore(ctx context.Context, itemID, fieldID string, score float64) error {
	if c.projectID == "" {
		return errors.New("write score: no project configured")
	}
	vars := map[string]any{
		"project": c.projectID,
		"item":    itemID,
		"field":   fieldID,
		"value":   score,
	}
	if err := c.graphQL(ctx, updateNumberMutation, vars, nil); err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	return nil
}

// Field is a project field as listed by ListFields.
type Field struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// ListFields returns the project's title and fields so a NUMBER field ID can
// be picked for configuration.
func (c *Client) ListFields(ctx context.Context) (string, []Field, error) {
	if c.projectID == "" {
		return "", nil, errors.New("list fields: no project configured")
	}
	var data struct {
		Node *struct {
			Title  string `json:"title"`
			Fields struct {
				Nodes []Field `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := c.graphQL(ctx, projectFieldsQuery, map[string]any{"id": c.projectID}, &data); err != nil {
		return "", nil, fmt.Errorf("list fields: %w", err)
	}
	if data.Node == nil {
		return "", nil, fmt.Errorf("list fields: no project with id %q", c.projectID)
	}
	var fields []Field
	for _, f := range data.Node.Fields.Nodes {
		if f.ID != "" {
			fields = append(fields, f)
		}
	}
	return data.Node.Title, fields, nil
}
