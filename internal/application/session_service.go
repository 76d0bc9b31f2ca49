package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
	"go.uber.org/zap"
)

// SessionService owns the in-memory session. It hydrates once from the
// credential store at startup and funnels every mutation, so no other
// component touches session fields directly.
type SessionService struct {
	store   ports.CredentialStore
	gateway ports.ChatGateway
	logger  *zap.Logger

	mu       sync.RWMutex
	session  domain.Session
	hydrated bool
}

func NewSessionService(store ports.CredentialStore, gateway ports.ChatGateway, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionService{
		store:   store,
		gateway: gateway,
		logger:  logger,
	}
}

// Hydrate reads the persisted token and member exactly once. It marks
// the session hydrated regardless of what the read finds: a missing or
// unreadable entry means anonymous, never a stuck hydrating state.
// Later calls are no-ops.
func (s *SessionService) Hydrate(ctx context.Context) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return s.session
	}

	token, err := s.store.Get(ctx, ports.CredentialKeyToken)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialNotFound) {
			s.logger.Warn("read stored token", zap.Error(err))
		}
		token = ""
	}

	var member *domain.Member
	rawMember, err := s.store.Get(ctx, ports.CredentialKeyMember)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialNotFound) {
			s.logger.Warn("read stored member", zap.Error(err))
		}
	} else {
		var decoded domain.Member
		if err := json.Unmarshal([]byte(rawMember), &decoded); err != nil {
			// Corrupt snapshot behaves like an absent one.
			s.logger.Warn("decode stored member", zap.Error(err))
		} else {
			member = &decoded
		}
	}

	s.session = domain.Session{Token: token, Member: member, Hydrated: true}
	s.hydrated = true

	return s.session
}

// Login replaces the in-memory session fields. It does not persist:
// the caller writes the credential store before calling Login, so a
// durable session takes both steps.
func (s *SessionService) Login(token string, member domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Token = token
	s.session.Member = &member
}

// Logout attempts a best-effort remote invalidation of the token and
// then tears the local session down unconditionally. No failure along
// the way reaches the caller: local teardown must never be blocked by
// the network.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.session.Token
	s.mu.Unlock()

	if token != "" {
		if err := s.gateway.Logout(ctx, token); err != nil {
			s.logger.Debug("remote logout failed, proceeding with local teardown", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.session.Token = ""
	s.session.Member = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, ports.CredentialKeyToken); err != nil {
		s.logger.Warn("delete stored token", zap.Error(err))
	}
	if err := s.store.Delete(ctx, ports.CredentialKeyMember); err != nil {
		s.logger.Warn("delete stored member", zap.Error(err))
	}
}

// Session returns a snapshot of the current state. The member pointer
// must be treated as read-only.
func (s *SessionService) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session
}

// Token returns the current token, empty when anonymous. The feed
// synchronizer uses this to re-validate the token before each dispatch.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Token
}

// SetMember refreshes the in-memory member snapshot, used after a
// profile update. The token is untouched.
func (s *SessionService) SetMember(member domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Member = &member
}
