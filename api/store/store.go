/* store.go
 * Contains the store struct and NewStore function. The methods for this package were split into three files:
 * teams, analytics and watch. Each of these files contain methods for interacting with that part of the database
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Teams     *mongo.Collection
		Analytics *mongo.Collection
	}
}

// Function for initialising Store. Initialises the db connection and the two collections the sync layer reads from
// Preconditions: Receives strings containing the following: dbName, mongoURI, teamsColl and analyticsColl
// Postconditions: Sets collection values and returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string, teamsColl string, analyticsColl string) (*Store, error) {
	if dbName == "" || teamsColl == "" || analyticsColl == "" {
		return nil, fmt.Errorf("dbName, teams collection and analytics collection are required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
	}
	s.Collections.Teams = db.Collection(teamsColl)
	s.Collections.Analytics = db.Collection(analyticsColl)
	return s, nil
}
