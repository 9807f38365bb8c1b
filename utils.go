/* utils.go
 * Helpers for main: the -serve flag and the -import run
 */

package main

import (
	"context"
	"fmt"
	"log"
	"nfl-stats-lab/api/store"
	"nfl-stats-lab/importer"
	"strings"
)

// surfaces are the presentation layers main can start
type surfaces struct {
	Bot bool
	Web bool
}

// parseSurfaces reads the -serve flag
// Preconditions: Receives a comma separated list containing bot and/or web (case insensitive)
// Postconditions: Returns the surfaces to start, or an error for an unknown or empty list
func parseSurfaces(str string) (surfaces, error) {
	var s surfaces
	for _, part := range strings.Split(str, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "bot":
			s.Bot = true
		case "web":
			s.Web = true
		case "":
		default:
			return surfaces{}, fmt.Errorf("unknown surface %q, expected bot or web", strings.TrimSpace(part))
		}
	}
	if !s.Bot && !s.Web {
		return surfaces{}, fmt.Errorf("at least one of bot or web is required")
	}
	return s, nil
}

// importSheet fetches a standings page, replaces the stored teams with it and upserts any grades it carries
// Preconditions: Receives a store and the url of a page with a standings table
// Postconditions: Teams are stored, then analytics if the table had grade columns. Returns the first error
func importSheet(ctx context.Context, st store.Interface, url string) error {
	sheet, err := importer.FetchSheet(ctx, url)
	if err != nil {
		return err
	}
	if err := st.StoreTeams(ctx, sheet.Teams); err != nil {
		return fmt.Errorf("failed to store imported teams: %w", err)
	}
	if len(sheet.Analytics) > 0 {
		if err := st.StoreAnalytics(ctx, sheet.Analytics); err != nil {
			return fmt.Errorf("failed to store imported grades: %w", err)
		}
	}
	log.Printf("Imported %d teams and %d graded teams from %s\n", len(sheet.Teams), len(sheet.Analytics), url)
	return nil
}
