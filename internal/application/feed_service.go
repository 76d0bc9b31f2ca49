package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
	"go.uber.org/zap"
)

// DefaultPollInterval is the cadence of background feed polls.
const DefaultPollInterval = 7 * time.Second

// FeedService keeps the local message feed in sync with the server.
// The server is the sole ordering authority: every successful poll
// replaces the feed wholesale. The one exception is an optimistic send,
// which appends the created message ahead of the next poll. If a poll
// lands before the server includes that message it will briefly vanish
// from the local feed; this inconsistency window is deliberate, not a
// bug to diff away.
type FeedService struct {
	gateway  ports.ChatGateway
	token    func() string
	clock    ports.Clock
	logger   *zap.Logger
	interval time.Duration
	onChange func()

	mu       sync.Mutex
	feed     []domain.ChatMessage
	loading  bool
	loadErr  error
	sendErr  error
	inputErr error
	lastSync time.Time
	epoch    uint64
	cancel   context.CancelFunc

	wg sync.WaitGroup
}

// FeedSnapshot is a point-in-time copy of the synchronizer state.
type FeedSnapshot struct {
	Messages   []domain.ChatMessage
	Loading    bool
	LoadErr    error
	SendErr    error
	InputErr   error
	LastSyncAt time.Time
}

// NewFeedService builds a synchronizer. token is re-read before every
// dispatch so a session torn down mid-poll stops further fetches.
func NewFeedService(gateway ports.ChatGateway, token func() string, clock ports.Clock, logger *zap.Logger) *FeedService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FeedService{
		gateway:  gateway,
		token:    token,
		clock:    clock,
		logger:   logger,
		interval: DefaultPollInterval,
	}
}

// SetInterval overrides the polling cadence. Call before Start.
func (s *FeedService) SetInterval(interval time.Duration) {
	s.interval = interval
}

// SetOnChange registers a callback fired after every state change.
// Call before Start; the callback must not block.
func (s *FeedService) SetOnChange(fn func()) {
	s.onChange = fn
}

// Start launches the polling loop: one immediate fetch (with the
// blocking loader), then a fetch per interval tick. A second Start
// supersedes the first; in-flight results of the old run are discarded.
func (s *FeedService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.epoch++
	epoch := s.epoch
	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.pollLoop(pollCtx, epoch)
}

// Stop cancels the polling loop and invalidates the current epoch so
// any fetch still in flight is a no-op when it resolves.
func (s *FeedService) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.mu.Unlock()
}

// Wait blocks until the polling loop and all dispatched fetches have
// returned. Call after Stop during shutdown.
func (s *FeedService) Wait() {
	s.wg.Wait()
}

func (s *FeedService) pollLoop(ctx context.Context, epoch uint64) {
	defer s.wg.Done()

	s.fetch(ctx, epoch, true)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Each tick dispatches its own fetch so a slow response
			// never delays the next one.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.fetch(ctx, epoch, false)
			}()
		}
	}
}

// Refresh performs a single fetch outside the polling cadence, used by
// the manual retry action. Safe to call concurrently with polling.
func (s *FeedService) Refresh(ctx context.Context, showLoader bool) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	s.fetch(ctx, epoch, showLoader)
}

func (s *FeedService) fetch(ctx context.Context, epoch uint64, showLoader bool) {
	token := s.token()
	if token == "" {
		return
	}

	if showLoader {
		s.mu.Lock()
		if epoch == s.epoch {
			s.loading = true
		}
		s.mu.Unlock()
		s.notify()
	}

	messages, err := s.gateway.ListMessages(ctx, token, domain.MessageQuery{})

	s.mu.Lock()
	if epoch != s.epoch || s.token() == "" {
		// Polling stopped or the session ended while this fetch was in
		// flight; the result is stale.
		s.mu.Unlock()
		return
	}
	if showLoader {
		s.loading = false
	}
	if err != nil {
		s.loadErr = err
		s.mu.Unlock()
		s.logger.Debug("feed fetch failed", zap.Error(err))
		s.notify()
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	s.feed = messages
	s.loadErr = nil
	s.lastSync = s.clock.Now()
	s.mu.Unlock()
	s.notify()
}

// Send validates and sends a message. An empty (after trimming) text
// sets the validation error and never reaches the network. When the
// server returns the created message it is appended optimistically;
// when the response body is empty a full refetch runs instead. On
// failure the caller keeps the typed text so the user can retry.
func (s *FeedService) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		s.mu.Lock()
		s.inputErr = domain.ErrEmptyMessage
		s.mu.Unlock()
		s.notify()
		return domain.ErrEmptyMessage
	}

	token := s.token()
	if token == "" {
		return domain.ErrUnauthorized
	}

	s.mu.Lock()
	s.inputErr = nil
	epoch := s.epoch
	s.mu.Unlock()

	created, err := s.gateway.SendMessage(ctx, token, trimmed)
	if err != nil {
		s.mu.Lock()
		if epoch == s.epoch {
			s.sendErr = err
		}
		s.mu.Unlock()
		s.logger.Debug("send message failed", zap.Error(err))
		s.notify()
		return err
	}

	s.mu.Lock()
	refetch := created == nil
	if epoch == s.epoch {
		s.sendErr = nil
		if created != nil {
			s.feed = append(s.feed, *created)
		}
	}
	s.mu.Unlock()
	s.notify()

	if refetch {
		s.fetch(ctx, epoch, false)
	}

	return nil
}

// Snapshot returns a copy of the feed and its status flags.
func (s *FeedService) Snapshot() FeedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]domain.ChatMessage, len(s.feed))
	copy(messages, s.feed)

	return FeedSnapshot{
		Messages:   messages,
		Loading:    s.loading,
		LoadErr:    s.loadErr,
		SendErr:    s.sendErr,
		InputErr:   s.inputErr,
		LastSyncAt: s.lastSync,
	}
}

func (s *FeedService) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
