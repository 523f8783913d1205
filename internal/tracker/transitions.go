package tracker

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type transitionList struct {
	Transitions []transition `json:"transitions"`
}

type transition struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	To   namedValue `json:"to"`
}

// transitionStatus changes an issue's status by executing the legal
// transition whose name or destination status matches statusName
// case-insensitively. A missing match or a transport failure is
// non-fatal: the skip is logged and reported via the return values so
// the rest of an update still succeeds.
func (c *Client) transitionStatus(ctx context.Context, key, statusName string) (applied bool, skipReason string) {
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "/transitions"

	var list transitionList
	if err := c.do(ctx, "list transitions", http.MethodGet, path, nil, &list); err != nil {
		c.log.Warn("could not list transitions, skipping status change",
			"key", key, "status", statusName, "error", err)
		return false, "transition lookup failed: " + err.Error()
	}

	var id string
	for _, t := range list.Transitions {
		if strings.EqualFold(t.Name, statusName) || strings.EqualFold(t.To.Name, statusName) {
			id = t.ID
			break
		}
	}

	if id == "" {
		available := make([]string, 0, len(list.Transitions))
		for _, t := range list.Transitions {
			available = append(available, t.To.Name)
		}
		c.log.Warn("no transition matches requested status, skipping",
			"key", key, "status", statusName, "available", strings.Join(available, ", "))
		return false, "no transition matches status " + statusName
	}

	payload := map[string]any{"transition": map[string]string{"id": id}}
	if err := c.do(ctx, "execute transition", http.MethodPost, path, payload, nil); err != nil {
		c.log.Warn("transition failed, skipping status change",
			"key", key, "status", statusName, "error", err)
		return false, "transition execution failed: " + err.Error()
	}

	c.log.Info("issue status transitioned", "key", key, "status", statusName)
	return true, ""
}
