package ports

import (
	"context"

	"github.com/bnema/groupchat-cli/internal/domain"
)

// ChatGateway executes authenticated calls against the chat service.
// Failures come back as *domain.APIError (categorized by status) or a
// transport error; success returns the parsed payload.
type ChatGateway interface {
	Register(ctx context.Context, username, password string) (domain.AuthGrant, error)
	Login(ctx context.Context, username, password string) (domain.AuthGrant, error)
	Logout(ctx context.Context, token string) error
	ListMessages(ctx context.Context, token string, query domain.MessageQuery) ([]domain.ChatMessage, error)
	// SendMessage returns the created message, or nil when the server
	// responds with an empty body.
	SendMessage(ctx context.Context, token, text string) (*domain.ChatMessage, error)
	Profile(ctx context.Context, token string) (domain.Member, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (domain.Member, error)
}
