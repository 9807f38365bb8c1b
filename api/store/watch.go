/* watch.go
 * Contains the change stream watchers that tell the sync layer when a collection has changed. Change streams need a
 * replica set; on a standalone mongod Watch fails straight away and the periodic resync is the only refresh path
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchTeams blocks until ctx is cancelled or the change stream fails, calling onChange for every change to the
// teams collection
func (s *Store) WatchTeams(ctx context.Context, onChange func()) error {
	return watchCollection(ctx, s.Collections.Teams, onChange)
}

// WatchAnalytics is WatchTeams for the analytics collection
func (s *Store) WatchAnalytics(ctx context.Context, onChange func()) error {
	return watchCollection(ctx, s.Collections.Analytics, onChange)
}

func watchCollection(ctx context.Context, coll *mongo.Collection, onChange func()) error {
	// Only the fact that something changed matters, the caller refetches the whole collection
	opts := options.ChangeStream().SetFullDocument(options.Default)
	stream, err := coll.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return fmt.Errorf("failed to open change stream on %s: %w", coll.Name(), err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		onChange()
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("change stream on %s failed: %w", coll.Name(), err)
	}
	// An invalidate event (drop or rename) ends the stream without an error
	return fmt.Errorf("change stream on %s closed", coll.Name())
}
