/* teams.go
 * Contains the methods for interacting with the teams collection
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

// Function used to fetch every team record from the db
// Preconditions: Receives receiver pointer for Store which contains the teams collection
// Postconditions: Returns slice of teams ordered by id (so snapshot order is stable between fetches), or error if it occurs
func (s *Store) FetchTeams(ctx context.Context) ([]shared.Team, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.Collections.Teams.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching teams from db: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []TeamDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding teams: %w", err)
	}

	teams := make([]shared.Team, 0, len(docs))
	for _, doc := range docs {
		teams = append(teams, doc.ToTeam())
	}
	return teams, nil
}

// Function to store team records. Existing teams are replaced, new teams are inserted
// Preconditions: Receives receiver pointer for Store and slice of teams to be stored. Team ids must be unique
// Postconditions: Updates the teams collection, returns error message if the operation was unsuccessful
func (s *Store) StoreTeams(ctx context.Context, teams []shared.Team) error {
	if len(teams) == 0 {
		return fmt.Errorf("teams input has length 0, requires at least 1")
	}
	if err := ValidateTeams(teams); err != nil {
		return err
	}

	models := make([]mongo.WriteModel, 0, len(teams))
	for _, t := range teams {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetReplacement(NewTeamDoc(t)).
			SetUpsert(true))
	}

	log.Printf("updating %d teams in db", len(teams))
	_, err := s.Collections.Teams.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to store teams: %w", err)
	}
	return nil
}
