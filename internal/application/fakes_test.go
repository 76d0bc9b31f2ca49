package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
)

// fakeCredentialStore is a map-backed ports.CredentialStore with
// injectable errors.
type fakeCredentialStore struct {
	mu        sync.Mutex
	values    map[string]string
	getErr    error
	putErr    error
	deleteErr error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{values: map[string]string{}}
}

func (f *fakeCredentialStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("credential %q: %w", key, domain.ErrCredentialNotFound)
	}
	return value, nil
}

func (f *fakeCredentialStore) Put(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return f.putErr
	}
	f.values[key] = value
	return nil
}

func (f *fakeCredentialStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.values, key)
	return nil
}

func (f *fakeCredentialStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.values[key]
	return ok
}

// fakeGateway implements ports.ChatGateway in memory. listBlock, when
// set, makes ListMessages wait until the channel is closed so tests can
// hold a fetch in flight.
type fakeGateway struct {
	mu          sync.Mutex
	messages    []domain.ChatMessage
	listErr     error
	listBlock   chan struct{}
	listCalls   int
	sendResult  *domain.ChatMessage
	sendErr     error
	sendCalls   int
	logoutErr   error
	logoutCalls int
	grant       domain.AuthGrant
	authErr     error
}

var _ ports.ChatGateway = (*fakeGateway)(nil)

func (f *fakeGateway) Register(context.Context, string, string) (domain.AuthGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grant, f.authErr
}

func (f *fakeGateway) Login(context.Context, string, string) (domain.AuthGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grant, f.authErr
}

func (f *fakeGateway) Logout(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeGateway) ListMessages(context.Context, string, domain.MessageQuery) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	f.listCalls++
	block := f.listBlock
	err := f.listErr
	messages := make([]domain.ChatMessage, len(f.messages))
	copy(messages, f.messages)
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (f *fakeGateway) SendMessage(context.Context, string, string) (*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sendCalls++
	return f.sendResult, f.sendErr
}

func (f *fakeGateway) Profile(context.Context, string) (domain.Member, error) {
	return domain.Member{}, nil
}

func (f *fakeGateway) UpdateProfile(context.Context, string, domain.ProfileUpdate) (domain.Member, error) {
	return domain.Member{}, nil
}

func (f *fakeGateway) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeGateway) sendCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

func (f *fakeGateway) setMessages(messages []domain.ChatMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = messages
}

func (f *fakeGateway) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
