/* helpers_test.go
 * Contains test helper functions and sample data for store package tests
 */

package store

import (
	"context"
	"nfl-stats-lab/api/shared"
	"os"
	"testing"
)

// NewTestStore creates a Store connected to the database named by MONGO_TEST_URI, with both collections emptied.
// The test is skipped when MONGO_TEST_URI is not set
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	mongoURI := os.Getenv("MONGO_TEST_URI")
	if mongoURI == "" {
		t.Skip("MONGO_TEST_URI not set, skipping mongo integration test")
	}

	s, err := NewStore(context.TODO(), "test_nfl_stats_lab", mongoURI, "teams", "team_analytics")
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Clear all collections before test
	_ = s.Collections.Teams.Drop(context.TODO())
	_ = s.Collections.Analytics.Drop(context.TODO())

	t.Cleanup(func() {
		_ = s.Database.Drop(context.TODO())
		_ = s.Client.Disconnect(context.TODO())
	})
	return s
}

// CreateSampleTeams creates a small division for testing
func CreateSampleTeams() []shared.Team {
	return []shared.Team{
		{ID: "PHI", Name: "Philadelphia Eagles", Wins: 10, Losses: 2, RemainingOpponents: []string{"DAL", "WAS"}},
		{ID: "DAL", Name: "Dallas Cowboys", Wins: 6, Losses: 6, RemainingOpponents: []string{"PHI", "NYG"}},
		{ID: "NYG", Name: "New York Giants", Wins: 2, Losses: 10, RemainingOpponents: []string{"WAS", "DAL"}},
		{ID: "WAS", Name: "Washington Commanders", Wins: 8, Losses: 4, RemainingOpponents: []string{"NYG", "PHI"}},
	}
}

// CreateSampleAnalytics creates analytics for part of the sample division
func CreateSampleAnalytics() map[string]shared.AnalyticRecord {
	return map[string]shared.AnalyticRecord{
		"PHI": {Grades: map[string]float64{"offense": 91.2, "defense": 84.0}},
		"DAL": {Grades: map[string]float64{"offense": 70.5}},
	}
}
