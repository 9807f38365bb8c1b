/* feed_test.go
 * Contains unit tests for feed.go using an in-memory source
 */

package feed

import (
	"context"
	"errors"
	"nfl-stats-lab/api/shared"
	"nfl-stats-lab/api/store"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source. Watchers block until the test pushes a change or ctx is cancelled
type fakeSource struct {
	mu        sync.Mutex
	teams     []shared.Team
	analytics map[string]shared.AnalyticRecord
	teamsErr  error
	statsErr  error

	teamChanges  chan struct{}
	statsChanges chan struct{}
	watchErr     error
	watchCalls   int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		teams: []shared.Team{
			{ID: "A", Wins: 8, Losses: 3, RemainingOpponents: []string{"B"}},
			{ID: "B", Wins: 5, Losses: 6, RemainingOpponents: []string{"A"}},
		},
		analytics:    map[string]shared.AnalyticRecord{"A": {Grades: map[string]float64{"offense": 80}}},
		teamChanges:  make(chan struct{}),
		statsChanges: make(chan struct{}),
	}
}

func (f *fakeSource) FetchTeams(ctx context.Context) ([]shared.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teams, f.teamsErr
}

func (f *fakeSource) FetchAnalytics(ctx context.Context) (map[string]shared.AnalyticRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analytics, f.statsErr
}

func (f *fakeSource) WatchTeams(ctx context.Context, onChange func()) error {
	return f.watch(ctx, f.teamChanges, onChange)
}

func (f *fakeSource) WatchAnalytics(ctx context.Context, onChange func()) error {
	return f.watch(ctx, f.statsChanges, onChange)
}

func (f *fakeSource) watch(ctx context.Context, changes chan struct{}, onChange func()) error {
	f.mu.Lock()
	f.watchCalls++
	err := f.watchErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			onChange()
		}
	}
}

func (f *fakeSource) setTeams(teams []shared.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams = teams
}

// region Refresh tests

func TestRefresh_PublishesSnapshot(t *testing.T) {
	f := NewFeed(newFakeSource())

	require.NoError(t, f.Refresh(context.TODO()))

	snap := f.Snapshot()
	assert.Len(t, snap.Teams, 2)
	assert.Equal(t, 80.0, snap.Analytics["A"].Grades["offense"])
	assert.Equal(t, uint64(1), snap.Version)
	assert.False(t, snap.ReceivedAt.IsZero())
}

func TestRefresh_FetchErrorKeepsPrevious(t *testing.T) {
	src := newFakeSource()
	f := NewFeed(src)
	require.NoError(t, f.Refresh(context.TODO()))

	src.teamsErr = errors.New("connection reset")
	err := f.Refresh(context.TODO())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, uint64(1), f.Snapshot().Version)
	assert.Len(t, f.Snapshot().Teams, 2)
}

func TestRefresh_AnalyticsErrorKeepsPrevious(t *testing.T) {
	src := newFakeSource()
	src.statsErr = errors.New("timeout")
	f := NewFeed(src)

	assert.Error(t, f.Refresh(context.TODO()))
	assert.True(t, f.Snapshot().Empty())
}

func TestRefresh_DuplicateTeamsRejected(t *testing.T) {
	src := newFakeSource()
	src.setTeams([]shared.Team{{ID: "A"}, {ID: "A"}})
	f := NewFeed(src)

	calls := 0
	f.Subscribe(func(shared.Snapshot) { calls++ })
	err := f.Refresh(context.TODO())

	assert.ErrorIs(t, err, store.ErrDuplicateTeam)
	assert.Equal(t, 0, calls)
	assert.True(t, f.Snapshot().Empty())
}

func TestRefresh_NilAnalyticsBecomesEmptyMap(t *testing.T) {
	src := newFakeSource()
	src.analytics = nil
	f := NewFeed(src)

	require.NoError(t, f.Refresh(context.TODO()))
	assert.NotNil(t, f.Snapshot().Analytics)
}

func TestRefreshTeams_KeepsAnalytics(t *testing.T) {
	src := newFakeSource()
	f := NewFeed(src)
	require.NoError(t, f.Refresh(context.TODO()))

	src.setTeams([]shared.Team{{ID: "C", Wins: 1}})
	src.statsErr = errors.New("should not be called")
	require.NoError(t, f.RefreshTeams(context.TODO()))

	snap := f.Snapshot()
	assert.Equal(t, "C", snap.Teams[0].ID)
	assert.Contains(t, snap.Analytics, "A")
	assert.Equal(t, uint64(2), snap.Version)
}

func TestRefreshAnalytics_KeepsTeams(t *testing.T) {
	src := newFakeSource()
	f := NewFeed(src)
	require.NoError(t, f.Refresh(context.TODO()))

	src.analytics = map[string]shared.AnalyticRecord{"B": {Grades: map[string]float64{"defense": 60}}}
	src.teamsErr = errors.New("should not be called")
	require.NoError(t, f.RefreshAnalytics(context.TODO()))

	snap := f.Snapshot()
	assert.Len(t, snap.Teams, 2)
	assert.NotContains(t, snap.Analytics, "A")
	assert.Equal(t, 60.0, snap.Analytics["B"].Grades["defense"])
}

// endregion

// region Subscribe tests

func TestSubscribe_ReceivesUpdates(t *testing.T) {
	f := NewFeed(newFakeSource())

	var got []uint64
	f.Subscribe(func(s shared.Snapshot) { got = append(got, s.Version) })

	require.NoError(t, f.Refresh(context.TODO()))
	require.NoError(t, f.Refresh(context.TODO()))

	assert.Equal(t, []uint64{1, 2}, got)
}

func TestSubscribe_LateSubscriberGetsCurrent(t *testing.T) {
	f := NewFeed(newFakeSource())
	require.NoError(t, f.Refresh(context.TODO()))

	var got shared.Snapshot
	f.Subscribe(func(s shared.Snapshot) { got = s })

	assert.Equal(t, uint64(1), got.Version)
	assert.Len(t, got.Teams, 2)
}

func TestSubscribe_NothingBeforeFirstPublish(t *testing.T) {
	f := NewFeed(newFakeSource())

	calls := 0
	f.Subscribe(func(shared.Snapshot) { calls++ })

	assert.Equal(t, 0, calls)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	f := NewFeed(newFakeSource())

	calls := 0
	unsubscribe := f.Subscribe(func(shared.Snapshot) { calls++ })
	other := 0
	f.Subscribe(func(shared.Snapshot) { other++ })

	require.NoError(t, f.Refresh(context.TODO()))
	unsubscribe()
	unsubscribe() // second call is a no-op
	require.NoError(t, f.Refresh(context.TODO()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestSubscribe_SnapshotsAreIsolated(t *testing.T) {
	f := NewFeed(newFakeSource())
	f.Subscribe(func(s shared.Snapshot) {
		s.Teams[0].Wins = 99
		s.Analytics["A"].Grades["offense"] = 0
	})

	require.NoError(t, f.Refresh(context.TODO()))

	snap := f.Snapshot()
	assert.Equal(t, 8, snap.Teams[0].Wins)
	assert.Equal(t, 80.0, snap.Analytics["A"].Grades["offense"])
}

func TestSubscribe_ConcurrentWithRefreshStaysOrdered(t *testing.T) {
	f := NewFeed(newFakeSource())
	require.NoError(t, f.Refresh(context.TODO()))

	type recorder struct {
		mu       sync.Mutex
		versions []uint64
	}
	recorders := make([]*recorder, 20)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = f.Refresh(context.TODO())
		}
	}()
	for i := range recorders {
		r := &recorder{}
		recorders[i] = r
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Subscribe(func(s shared.Snapshot) {
				r.mu.Lock()
				defer r.mu.Unlock()
				r.versions = append(r.versions, s.Version)
			})
		}()
	}
	wg.Wait()

	final := f.Snapshot().Version
	for i, r := range recorders {
		r.mu.Lock()
		require.NotEmpty(t, r.versions, "subscriber %d", i)
		for j := 1; j < len(r.versions); j++ {
			assert.Less(t, r.versions[j-1], r.versions[j], "subscriber %d got versions out of order", i)
		}
		assert.Equal(t, final, r.versions[len(r.versions)-1], "subscriber %d did not end on the latest snapshot", i)
		r.mu.Unlock()
	}
}

// endregion

// region Run tests

func TestRun_FollowsChanges(t *testing.T) {
	src := newFakeSource()
	f := NewFeed(src)

	versions := make(chan uint64, 10)
	f.Subscribe(func(s shared.Snapshot) { versions <- s.Version })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = f.Run(ctx)
		close(done)
	}()

	assert.Equal(t, uint64(1), <-versions)

	src.setTeams([]shared.Team{{ID: "Z", Wins: 1}})
	src.teamChanges <- struct{}{}
	assert.Equal(t, uint64(2), <-versions)

	src.statsChanges <- struct{}{}
	assert.Equal(t, uint64(3), <-versions)
	assert.Equal(t, "Z", f.Snapshot().Teams[0].ID)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReturnsOnCancelWhenWatchFails(t *testing.T) {
	src := newFakeSource()
	src.watchErr = errors.New("change streams need a replica set")
	f := NewFeed(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = f.Run(ctx)
		close(done)
	}()

	// initial refresh still happens
	require.Eventually(t, func() bool { return f.Snapshot().Version >= 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// endregion

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second))
	assert.Equal(t, maxBackoff, nextBackoff(45*time.Second))
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff))
}
