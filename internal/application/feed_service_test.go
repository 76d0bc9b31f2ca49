package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type tokenSource struct {
	mu    sync.Mutex
	token string
}

func (ts *tokenSource) get() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token
}

func (ts *tokenSource) set(token string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = token
}

func staticToken(token string) func() string {
	return func() string { return token }
}

func someMessages() []domain.ChatMessage {
	return []domain.ChatMessage{
		{
			ID:        10,
			Text:      "hi",
			Author:    &domain.MessageAuthor{ID: 2, Username: "bob"},
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestStartPerformsImmediateFetch(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)
	feed.SetInterval(time.Hour)

	feed.Start(context.Background())
	defer func() {
		feed.Stop()
		feed.Wait()
	}()

	require.Eventually(t, func() bool {
		return len(feed.Snapshot().Messages) == 1
	}, 2*time.Second, 5*time.Millisecond)

	snap := feed.Snapshot()
	assert.Equal(t, int64(10), snap.Messages[0].ID)
	assert.False(t, snap.Messages[0].IsOwn(&domain.Member{ID: 1, Username: "alice"}))
	assert.NoError(t, snap.LoadErr)
	assert.False(t, snap.Loading)
}

func TestPollingFetchesOnEveryTick(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)
	feed.SetInterval(10 * time.Millisecond)

	feed.Start(context.Background())
	require.Eventually(t, func() bool {
		return gateway.listCallCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	feed.Stop()
	feed.Wait()
}

func TestStartWithoutTokenNeverDispatches(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	feed := NewFeedService(gateway, staticToken(""), nil, nil)
	feed.SetInterval(10 * time.Millisecond)

	feed.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	feed.Stop()
	feed.Wait()

	assert.Zero(t, gateway.listCallCount())
	assert.Empty(t, feed.Snapshot().Messages)
}

func TestRefreshFullReplaceIsStable(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	clock := fixedClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	feed := NewFeedService(gateway, staticToken("abc"), clock, nil)

	feed.Refresh(context.Background(), false)
	first := feed.Snapshot()

	feed.Refresh(context.Background(), false)
	second := feed.Snapshot()

	assert.Equal(t, first.Messages, second.Messages)
	assert.Equal(t, clock.now, second.LastSyncAt)
}

func TestRefreshFailureKeepsFeedAndSetsRetryableError(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)

	feed.Refresh(context.Background(), false)
	require.Len(t, feed.Snapshot().Messages, 1)

	fetchErr := errors.New("gateway exploded")
	gateway.setListErr(fetchErr)
	feed.Refresh(context.Background(), false)

	snap := feed.Snapshot()
	assert.Len(t, snap.Messages, 1)
	assert.ErrorIs(t, snap.LoadErr, fetchErr)

	// The next successful fetch is the recovery path.
	gateway.setListErr(nil)
	feed.Refresh(context.Background(), false)
	assert.NoError(t, feed.Snapshot().LoadErr)
}

func TestRefreshShowsLoaderWhileInFlight(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	gateway := &fakeGateway{messages: someMessages(), listBlock: block}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		feed.Refresh(context.Background(), true)
	}()

	require.Eventually(t, func() bool {
		return feed.Snapshot().Loading
	}, 2*time.Second, 5*time.Millisecond)

	close(block)
	<-done

	snap := feed.Snapshot()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Messages, 1)
}

func TestSendWhitespaceOnlySetsValidationErrorWithoutNetwork(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)

	err := feed.Send(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrEmptyMessage)

	snap := feed.Snapshot()
	assert.ErrorIs(t, snap.InputErr, domain.ErrEmptyMessage)
	assert.Empty(t, snap.Messages)
	assert.Zero(t, gateway.sendCallCount())
	assert.Zero(t, gateway.listCallCount())
}

func TestSendAppendsCreatedMessage(t *testing.T) {
	t.Parallel()

	created := domain.ChatMessage{
		ID:        11,
		Text:      "hello",
		Author:    &domain.MessageAuthor{ID: 1, Username: "alice"},
		CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	gateway := &fakeGateway{messages: someMessages(), sendResult: &created}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)

	feed.Refresh(context.Background(), false)
	before := len(feed.Snapshot().Messages)

	require.NoError(t, feed.Send(context.Background(), "hello"))

	snap := feed.Snapshot()
	require.Len(t, snap.Messages, before+1)
	assert.Equal(t, created, snap.Messages[len(snap.Messages)-1])
	assert.NoError(t, snap.SendErr)
	// The optimistic append must not trigger a refetch.
	assert.Equal(t, 1, gateway.listCallCount())
}

func TestSendWithEmptyResponseFallsBackToFullFetch(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)

	serverFeed := append(someMessages(), domain.ChatMessage{
		ID:     11,
		Text:   "hello",
		Author: &domain.MessageAuthor{ID: 1, Username: "alice"},
	})
	gateway.setMessages(serverFeed)

	require.NoError(t, feed.Send(context.Background(), "hello"))

	snap := feed.Snapshot()
	assert.Equal(t, serverFeed, snap.Messages)
	assert.Equal(t, 1, gateway.listCallCount())
}

func TestSendFailureKeepsFeedAndSetsRetryableError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("send rejected")
	gateway := &fakeGateway{messages: someMessages(), sendErr: sendErr}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)
	feed.Refresh(context.Background(), false)

	err := feed.Send(context.Background(), "hello")
	require.ErrorIs(t, err, sendErr)

	snap := feed.Snapshot()
	assert.Len(t, snap.Messages, 1)
	assert.ErrorIs(t, snap.SendErr, sendErr)
}

func TestStopDiscardsInFlightFetch(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	gateway := &fakeGateway{messages: someMessages(), listBlock: block}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)
	feed.SetInterval(time.Hour)

	feed.Start(context.Background())
	require.Eventually(t, func() bool {
		return gateway.listCallCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	atStop := feed.Snapshot()
	feed.Stop()
	close(block)
	feed.Wait()

	assert.Equal(t, atStop.Messages, feed.Snapshot().Messages)
	assert.Empty(t, feed.Snapshot().Messages)
}

func TestTokenClearedMidFlightDiscardsResult(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	gateway := &fakeGateway{messages: someMessages(), listBlock: block}
	tokens := &tokenSource{token: "abc"}
	feed := NewFeedService(gateway, tokens.get, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		feed.Refresh(context.Background(), false)
	}()

	require.Eventually(t, func() bool {
		return gateway.listCallCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	tokens.set("")
	close(block)
	<-done

	assert.Empty(t, feed.Snapshot().Messages)
}

func TestRestartSupersedesPreviousRun(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)
	feed.SetInterval(time.Hour)

	feed.Start(context.Background())
	feed.Start(context.Background())

	require.Eventually(t, func() bool {
		return len(feed.Snapshot().Messages) == 1
	}, 2*time.Second, 5*time.Millisecond)

	feed.Stop()
	feed.Wait()
}

func TestOnChangeFiresOnStateChanges(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{messages: someMessages()}
	feed := NewFeedService(gateway, staticToken("abc"), nil, nil)

	var mu sync.Mutex
	fired := 0
	feed.SetOnChange(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	feed.Refresh(context.Background(), false)

	mu.Lock()
	defer mu.Unlock()
	assert.Positive(t, fired)
}
