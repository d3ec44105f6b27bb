package auth

import "context"

// Identity is who the current request acts as. It is resolved once per
// request from the session; UserID and Admin are independent.
type Identity struct {
	UserID uint
	Admin  bool
}

// Authenticated reports whether a customer is logged in.
func (i Identity) Authenticated() bool { return i.UserID != 0 }

// UserRef returns the user id for nullable foreign keys.
func (i Identity) UserRef() *uint {
	if i.UserID == 0 {
		return nil
	}
	id := i.UserID
	return &id
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the request Identity; anonymous when none was set.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// Session keys that carry the identity between requests.
const (
	SessionUserID = "user_id"
	SessionAdmin  = "admin_logged_in"
)
