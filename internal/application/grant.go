package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
)

// PersistGrant writes a fresh auth grant to the credential store. The
// login and register flows call this before SessionService.Login so a
// durable session always takes both steps, storage first.
func PersistGrant(ctx context.Context, store ports.CredentialStore, grant domain.AuthGrant) error {
	if err := store.Put(ctx, ports.CredentialKeyToken, grant.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	encoded, err := json.Marshal(grant.Member)
	if err != nil {
		return fmt.Errorf("encode member: %w", err)
	}
	if err := store.Put(ctx, ports.CredentialKeyMember, string(encoded)); err != nil {
		return fmt.Errorf("store member: %w", err)
	}

	return nil
}

// PersistMember refreshes only the stored member snapshot, used after
// profile updates.
func PersistMember(ctx context.Context, store ports.CredentialStore, member domain.Member) error {
	encoded, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("encode member: %w", err)
	}
	if err := store.Put(ctx, ports.CredentialKeyMember, string(encoded)); err != nil {
		return fmt.Errorf("store member: %w", err)
	}

	return nil
}
