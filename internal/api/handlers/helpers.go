package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"splitease/pkg/utils"
)

// UserIDFromRequest pulls the authenticated user's id out of the request
// context where the JWT middleware stored it. JWT numeric claims decode as
// float64.
func UserIDFromRequest(r *http.Request) (int, error) {
	raw := r.Context().Value(utils.ContextKey("userId"))
	id, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("missing or malformed user id in token")
	}
	return int(id), nil
}

// PathID parses the named route wildcard as a positive numeric id, e.g.
// PathID(r, "id") for a route registered as /settlements/{id}/confirm.
func PathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s in path", name)
	}
	return id, nil
}
