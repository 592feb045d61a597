package app

import (
	"strconv"
	"strings"

	"caltrack/internal/domain"

	"github.com/google/uuid"
)

// resolveUser maps a request's user id onto the roster. A blank id falls
// back to the default user.
func resolveUser(r *domain.Roster, id string) (domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return r.Default(), nil
	}
	u, ok := r.Lookup(id)
	if !ok {
		return domain.User{}, invalid("user", "unknown user "+strconv.Quote(id))
	}
	return u, nil
}

func newID() string {
	return uuid.NewString()
}
