package ports

import "context"

// Well-known token store keys. The admin scope and the user scope are
// kept apart so a 401 on one never logs out the other.
const (
	KeyAdminToken = "adminToken"
	KeyAdminUser  = "adminUser"
	KeyUserToken  = "token"
	KeyUser       = "user"
)

// TokenStore persists session tokens between restarts.
type TokenStore interface {
	// Get returns the value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
