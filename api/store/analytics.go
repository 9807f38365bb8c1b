/* analytics.go
 * Contains the methods for interacting with the team_analytics collection. This collection is written by the grading
 * scripts, the bot only reads from it outside of seeding and tests
 */

package store

import (
	"context"
	"fmt"
	"log"
	"nfl-stats-lab/api/shared"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FetchAnalytics returns every analytic record keyed by team id
// Preconditions: Receives receiver pointer for Store which contains the analytics collection
// Postconditions: Returns map of team id to AnalyticRecord (empty if the collection is empty), or an error if it occurs
func (s *Store) FetchAnalytics(ctx context.Context) (map[string]shared.AnalyticRecord, error) {
	cursor, err := s.Collections.Analytics.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("error fetching analytics from db: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []AnalyticsDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding analytics: %w", err)
	}

	analytics := make(map[string]shared.AnalyticRecord, len(docs))
	for _, doc := range docs {
		analytics[doc.TeamID] = shared.AnalyticRecord{Grades: doc.Grades}
	}
	return analytics, nil
}

// StoreAnalytics upserts analytic records keyed by team id
// Preconditions: Receives receiver pointer for Store and the records to be stored
// Postconditions: Updates the analytics collection and returns nil, or an error if it occurs
func (s *Store) StoreAnalytics(ctx context.Context, analytics map[string]shared.AnalyticRecord) error {
	if len(analytics) == 0 {
		return fmt.Errorf("analytics input is empty")
	}

	models := make([]mongo.WriteModel, 0, len(analytics))
	for id, rec := range analytics {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(AnalyticsDoc{TeamID: id, Grades: rec.Grades}).
			SetUpsert(true))
	}

	log.Printf("updating %d analytic records in db", len(analytics))
	_, err := s.Collections.Analytics.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to store analytics: %w", err)
	}
	return nil
}
