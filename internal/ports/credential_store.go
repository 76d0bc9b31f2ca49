package ports

import "context"

// Storage keys for the persisted session. The two entries are
// independent: either may be absent on its own.
const (
	CredentialKeyToken  = "authToken"
	CredentialKeyMember = "authMember"
)

type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
