/* test_mocks.go
 * Contains mock structures for testing the API package and its consumers
 */

package api

import (
	"context"
	"fmt"
	"nfl-stats-lab/api/feed"
	"nfl-stats-lab/api/shared"
	"nfl-stats-lab/api/store"
	"sync"
)

// MockStore implements the store Interface in memory for testing
type MockStore struct {
	mu        sync.Mutex
	Teams     []shared.Team
	Analytics map[string]shared.AnalyticRecord

	// Error injection for testing error paths
	FetchTeamsError     error
	FetchAnalyticsError error
	StoreTeamsError     error
	StoreAnalyticsError error
	WatchError          error

	DatabaseName string
}

var _ store.Interface = (*MockStore)(nil)

type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

type mockClient struct{}

func (m *mockClient) Disconnect(context.Context) error {
	return nil
}

// NewMockStore creates a new MockStore holding a four team division
func NewMockStore() *MockStore {
	return &MockStore{
		Teams: []shared.Team{
			{ID: "PHI", Name: "Philadelphia Eagles", Wins: 10, Losses: 2, RemainingOpponents: []string{"DAL", "WAS", "NYG"}},
			{ID: "DAL", Name: "Dallas Cowboys", Wins: 6, Losses: 6, RemainingOpponents: []string{"PHI", "NYG"}},
			{ID: "NYG", Name: "New York Giants", Wins: 2, Losses: 10, RemainingOpponents: []string{"WAS", "DAL"}},
			{ID: "WAS", Name: "Washington Commanders", Wins: 8, Losses: 4, RemainingOpponents: []string{"NYG", "PHI"}},
		},
		Analytics: map[string]shared.AnalyticRecord{
			"PHI": {Grades: map[string]float64{"offense": 91.2, "defense": 84.0}},
		},
		DatabaseName: "test_db",
	}
}

// FetchTeams mock implementation
func (m *MockStore) FetchTeams(ctx context.Context) ([]shared.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchTeamsError != nil {
		return nil, m.FetchTeamsError
	}
	return m.Teams, nil
}

// FetchAnalytics mock implementation
func (m *MockStore) FetchAnalytics(ctx context.Context) (map[string]shared.AnalyticRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchAnalyticsError != nil {
		return nil, m.FetchAnalyticsError
	}
	return m.Analytics, nil
}

// StoreTeams mock implementation
func (m *MockStore) StoreTeams(ctx context.Context, teams []shared.Team) error {
	if m.StoreTeamsError != nil {
		return m.StoreTeamsError
	}
	if len(teams) == 0 {
		return fmt.Errorf("teams input has length 0, requires at least 1")
	}
	if err := store.ValidateTeams(teams); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Teams = teams
	return nil
}

// StoreAnalytics mock implementation
func (m *MockStore) StoreAnalytics(ctx context.Context, analytics map[string]shared.AnalyticRecord) error {
	if m.StoreAnalyticsError != nil {
		return m.StoreAnalyticsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Analytics = analytics
	return nil
}

// WatchTeams mock implementation, blocks until ctx is done
func (m *MockStore) WatchTeams(ctx context.Context, onChange func()) error {
	if m.WatchError != nil {
		return m.WatchError
	}
	<-ctx.Done()
	return ctx.Err()
}

// WatchAnalytics mock implementation, blocks until ctx is done
func (m *MockStore) WatchAnalytics(ctx context.Context, onChange func()) error {
	return m.WatchTeams(ctx, onChange)
}

// GetDatabase mock implementation
func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// GetClient mock implementation
func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{}
}

// SetTeams is a helper to replace the stored teams
func (m *MockStore) SetTeams(teams []shared.Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Teams = teams
}

// NewMockAPI creates an API whose feed has already been refreshed once from a MockStore
func NewMockAPI(baseWeek int) (*API, *MockStore, *feed.Feed) {
	ms := NewMockStore()
	f := feed.NewFeed(ms)
	_ = f.Refresh(context.TODO())
	a, _ := NewAPI(f, baseWeek)
	return a, ms, f
}

// StaticSnapshot is a Snapshotter that always returns the same snapshot
type StaticSnapshot shared.Snapshot

func (s StaticSnapshot) Snapshot() shared.Snapshot {
	return shared.Snapshot(s).Clone()
}
