package core

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/dmchat-server/internal/store"
)

// fakeStore is an in-memory store.Store for hub tests.
type fakeStore struct {
	mu         sync.Mutex
	identities map[string]*store.Identity
	messages   []*store.Message
	nextID     int64

	upsertErr error
	saveErr   error

	markReadCounts []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		identities: make(map[string]*store.Identity),
	}
}

func (f *fakeStore) UpsertOnline(_ context.Context, nickname, sessionToken string) (*store.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	ident, ok := f.identities[nickname]
	if !ok {
		ident = &store.Identity{Nickname: nickname, CreatedAt: time.Now()}
		f.identities[nickname] = ident
	}
	ident.SessionToken = sessionToken
	ident.Online = true
	ident.LastSeen = time.Now()
	return ident, nil
}

func (f *fakeStore) SetOffline(_ context.Context, nickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ident, ok := f.identities[nickname]; ok {
		ident.Online = false
		ident.SessionToken = ""
		ident.LastSeen = time.Now()
	}
	return nil
}

func (f *fakeStore) GetIdentity(_ context.Context, nickname string) (*store.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident, ok := f.identities[nickname]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *ident
	return &clone, nil
}

func (f *fakeStore) MarkAllOffline(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, ident := range f.identities {
		if ident.Online || ident.SessionToken != "" {
			ident.Online = false
			ident.SessionToken = ""
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SaveMessage(_ context.Context, msg *store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	msg.ID = f.nextID
	clone := *msg
	f.messages = append(f.messages, &clone)
	return nil
}

func (f *fakeStore) ListConversation(_ context.Context, a, b string, limit int) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*store.Message
	for _, msg := range f.messages {
		if (msg.From == a && msg.To == b) || (msg.From == b && msg.To == a) {
			clone := *msg
			result = append(result, &clone)
		}
	}
	// Newest first, as the real store does.
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeStore) MarkRead(_ context.Context, from, to string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, msg := range f.messages {
		if msg.From == from && msg.To == to && !msg.Read {
			msg.Read = true
			count++
		}
	}
	f.markReadCounts = append(f.markReadCounts, count)
	return count, nil
}

func (f *fakeStore) CountUnread(_ context.Context, to string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, msg := range f.messages {
		if msg.To == to && !msg.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeStore) identity(nickname string) *store.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ident, ok := f.identities[nickname]; ok {
		clone := *ident
		return &clone
	}
	return nil
}

func (f *fakeStore) setUpsertErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertErr = err
}

func (f *fakeStore) markReadHistory() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.markReadCounts...)
}

// startHub runs a hub over the fake store for the duration of the test.
func startHub(t *testing.T, st store.Store) *Hub {
	t.Helper()

	hub := NewHub(st, nil, Options{StoreTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// mustEvent waits for the next event of the given kind, skipping others.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

// mustReply waits for the reply correlated with the given command ID.
func mustReply(t *testing.T, ch <-chan *Event, id uint64) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == EventReply && ev.ID == id {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected reply for command %d not received", id)
			return nil
		}
	}
}

func joinAs(t *testing.T, hub *Hub, c *Client, nickname string, id uint64) *Event {
	t.Helper()

	hub.Dispatch(c, &Command{Kind: CommandJoin, ID: id, Join: &JoinRequest{Nickname: nickname}})
	return mustReply(t, c.Events, id)
}
