/* feed.go
 * Contains the sync layer: it keeps the latest snapshot of the teams and analytics collections and pushes every new
 * snapshot to its subscribers. Fetch and watch errors are logged here and never reach a subscriber
 */

package feed

import (
	"context"
	"fmt"
	"log"
	"nfl-stats-lab/api/shared"
	"nfl-stats-lab/api/store"
	"sync"
	"time"
)

const (
	initialBackoff = time.Second
	maxBackoff     = time.Minute
)

// Source is the part of store.Interface the feed reads from
type Source interface {
	FetchTeams(ctx context.Context) ([]shared.Team, error)
	FetchAnalytics(ctx context.Context) (map[string]shared.AnalyticRecord, error)
	WatchTeams(ctx context.Context, onChange func()) error
	WatchAnalytics(ctx context.Context, onChange func()) error
}

var _ Source = (store.Interface)(nil)

type subscriber struct {
	id uint64
	fn func(shared.Snapshot)
}

// Feed holds the most recent snapshot and the list of subscribers
type Feed struct {
	source Source

	mu          sync.RWMutex
	snapshot    shared.Snapshot
	published   bool
	subscribers []subscriber
	nextID      uint64

	// refreshMu serialises refreshes so two watchers can't publish out of order
	refreshMu sync.Mutex

	now func() time.Time
}

func NewFeed(source Source) *Feed {
	return &Feed{
		source: source,
		now:    time.Now,
	}
}

// Snapshot returns a copy of the latest snapshot. Before the first refresh this is an empty snapshot
func (f *Feed) Snapshot() shared.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot.Clone()
}

// Subscribe registers fn to receive every new snapshot. If a snapshot has already been published fn receives it
// straight away. The returned function removes the subscription and is safe to call more than once.
// fn must not call Subscribe or a Refresh method, publishing holds refreshMu while it runs
func (f *Feed) Subscribe(fn func(shared.Snapshot)) (unsubscribe func()) {
	// holding refreshMu until the first delivery keeps it ordered before any newer publish
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subscribers = append(f.subscribers, subscriber{id: id, fn: fn})
	current, published := f.snapshot.Clone(), f.published
	f.mu.Unlock()

	if published {
		fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subscribers {
				if s.id == id {
					f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Refresh refetches both collections and publishes a new snapshot
// Preconditions: Receives a context that bounds the fetches
// Postconditions: Publishes the new snapshot and returns nil, or keeps the previous snapshot and returns the error
func (f *Feed) Refresh(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	teams, err := f.source.FetchTeams(ctx)
	if err != nil {
		return f.fail("teams", err)
	}
	if err := store.ValidateTeams(teams); err != nil {
		return f.fail("teams", err)
	}
	analytics, err := f.source.FetchAnalytics(ctx)
	if err != nil {
		return f.fail("analytics", err)
	}

	f.publish(teams, analytics)
	return nil
}

// RefreshTeams refetches only the teams collection; the current analytics are reused
func (f *Feed) RefreshTeams(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	teams, err := f.source.FetchTeams(ctx)
	if err != nil {
		return f.fail("teams", err)
	}
	if err := store.ValidateTeams(teams); err != nil {
		return f.fail("teams", err)
	}

	f.mu.RLock()
	analytics := f.snapshot.Analytics
	f.mu.RUnlock()

	f.publish(teams, analytics)
	return nil
}

// RefreshAnalytics refetches only the analytics collection; the current teams are reused
func (f *Feed) RefreshAnalytics(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	analytics, err := f.source.FetchAnalytics(ctx)
	if err != nil {
		return f.fail("analytics", err)
	}

	f.mu.RLock()
	teams := f.snapshot.Teams
	f.mu.RUnlock()

	f.publish(teams, analytics)
	return nil
}

func (f *Feed) fail(what string, err error) error {
	log.Printf("%s sync error: %v", what, err)
	return fmt.Errorf("%s sync failed: %w", what, err)
}

// publish swaps in the new snapshot and notifies subscribers outside the lock, in the order they subscribed
func (f *Feed) publish(teams []shared.Team, analytics map[string]shared.AnalyticRecord) {
	if analytics == nil {
		analytics = map[string]shared.AnalyticRecord{}
	}
	next := shared.Snapshot{
		Teams:      teams,
		Analytics:  analytics,
		ReceivedAt: f.now(),
	}.Clone()

	f.mu.Lock()
	next.Version = f.snapshot.Version + 1
	f.snapshot = next
	f.published = true
	subs := make([]subscriber, len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, s := range subs {
		s.fn(next.Clone())
	}
}

// Run does an initial refresh and then follows both change streams until ctx is cancelled. A failed change stream
// is reopened with exponential backoff
func (f *Feed) Run(ctx context.Context) error {
	if err := f.Refresh(ctx); err != nil {
		log.Println("initial sync failed, waiting for changes:", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.watchLoop(ctx, "teams", f.source.WatchTeams, f.RefreshTeams)
	}()
	go func() {
		defer wg.Done()
		f.watchLoop(ctx, "analytics", f.source.WatchAnalytics, f.RefreshAnalytics)
	}()
	wg.Wait()
	return nil
}

func (f *Feed) watchLoop(ctx context.Context, name string, watch func(context.Context, func()) error, refresh func(context.Context) error) {
	backoff := initialBackoff
	for {
		err := watch(ctx, func() {
			// refresh errors are already logged, a later change or resync will catch up
			_ = refresh(ctx)
			backoff = initialBackoff
		})
		if ctx.Err() != nil {
			return
		}
		log.Printf("%s watch stopped: %v, retrying in %s", name, err, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)

		// catch up on anything missed while the stream was down
		_ = refresh(ctx)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
