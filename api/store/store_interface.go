/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"
	"nfl-stats-lab/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	FetchTeams(ctx context.Context) ([]shared.Team, error)
	FetchAnalytics(ctx context.Context) (map[string]shared.AnalyticRecord, error)
	StoreTeams(ctx context.Context, teams []shared.Team) error
	StoreAnalytics(ctx context.Context, analytics map[string]shared.AnalyticRecord) error
	WatchTeams(ctx context.Context, onChange func()) error
	WatchAnalytics(ctx context.Context, onChange func()) error

	// Getter methods for accessing fields
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
