package domain

import "context"

const (
	// DefaultNotebookName is used when a request carries no
	// notebook_name parameter.
	DefaultNotebookName = "Stage 5"

	// NoteFetchLimit caps how many notes a listing returns.
	NoteFetchLimit = 10
)

const (
	RequesterIdCtxKey    = "nb-requesterId"
	RequesterEmailCtxKey = "nb-requesterEmail"
)

// Identity is the authenticated requester as resolved by the identity
// service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Author converts the identity into the embeddable author record.
func (i Identity) Author() *Author {
	return &Author{Identity: i.ID, Email: i.Email}
}

// IdentityFromContext returns the requester identity placed in the
// context by the auth middleware. Absence is a normal case.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(RequesterIdCtxKey).(string)
	if !ok || id == "" {
		return Identity{}, false
	}
	email, _ := ctx.Value(RequesterEmailCtxKey).(string)
	return Identity{ID: id, Email: email}, true
}
