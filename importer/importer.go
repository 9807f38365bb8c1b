/* importer.go
 * Contains the standings importer. Reads an html standings table (e.g. an exported sheet or a stats site page) and
 * turns it into teams for the teams collection, plus any "<name> grade" columns as analytic records
 */

package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"nfl-stats-lab/api/shared"
	"nfl-stats-lab/api/store"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var client = &http.Client{Timeout: 30 * time.Second}

// gradeSuffix marks a header as a grade column, "Offense Grade" becomes the "offense" grade
const gradeSuffix = " grade"

// Sheet is everything read from one standings table
type Sheet struct {
	Teams []shared.Team
	// Analytics holds the grades of teams that had at least one grade cell filled in
	Analytics map[string]shared.AnalyticRecord
}

// FetchStandings downloads a page and returns the teams in its standings table
func FetchStandings(ctx context.Context, url string) ([]shared.Team, error) {
	sheet, err := FetchSheet(ctx, url)
	if err != nil {
		return nil, err
	}
	return sheet.Teams, nil
}

// FetchSheet downloads a page and parses the standings table on it
func FetchSheet(ctx context.Context, url string) (Sheet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Sheet{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", "nfl-stats-lab/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return Sheet{}, fmt.Errorf("error fetching standings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Sheet{}, fmt.Errorf("non-200 status code: %d %s", resp.StatusCode, resp.Status)
	}
	return ParseSheet(resp.Body)
}

// ParseStandings is ParseSheet without the grades
func ParseStandings(r io.Reader) ([]shared.Team, error) {
	sheet, err := ParseSheet(r)
	if err != nil {
		return nil, err
	}
	return sheet.Teams, nil
}

// ParseSheet reads the first table whose header row has an id column
// Preconditions: Receives html containing a table with id, name, wins, losses and remaining header cells, and
// optionally "<name> grade" cells. Only id is required, other columns default to zero values. Header matching is case
// insensitive and unknown columns are ignored
// Postconditions: Returns the teams in table order with their grades, or an error if no table has an id column, a
// number cell is malformed, or the teams fail store validation (duplicate ids, negative records)
func ParseSheet(r io.Reader) (Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("error parsing html: %w", err)
	}

	sheet := Sheet{Analytics: make(map[string]shared.AnalyticRecord)}
	var parseErr error
	found := false

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}

		columns := headerColumns(rows.First())
		if _, ok := columns["id"]; !ok {
			log.Printf("Table #%d doesn't appear to be a standings table", i)
			return true
		}
		found = true

		rows.Slice(1, rows.Length()).EachWithBreak(func(rowIdx int, row *goquery.Selection) bool {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			// blank spacer rows
			if len(cells) == 0 || strings.Join(cells, "") == "" {
				return true
			}

			team, err := parseRow(cells, columns)
			if err != nil {
				parseErr = fmt.Errorf("row %d: %w", rowIdx+1, err)
				return false
			}
			grades, err := parseGrades(cells, columns)
			if err != nil {
				parseErr = fmt.Errorf("row %d team %s: %w", rowIdx+1, team.ID, err)
				return false
			}
			sheet.Teams = append(sheet.Teams, team)
			if len(grades) > 0 {
				sheet.Analytics[team.ID] = shared.AnalyticRecord{Grades: grades}
			}
			return true
		})
		return false
	})

	if parseErr != nil {
		return Sheet{}, parseErr
	}
	if !found {
		return Sheet{}, fmt.Errorf("no standings table with an id column found")
	}
	if err := store.ValidateTeams(sheet.Teams); err != nil {
		return Sheet{}, err
	}
	return sheet, nil
}

// headerColumns maps lower case header names to their column index
func headerColumns(header *goquery.Selection) map[string]int {
	columns := make(map[string]int)
	header.Find("th, td").Each(func(j int, cell *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(cell.Text()))
		if _, seen := columns[name]; !seen && name != "" {
			columns[name] = j
		}
	})
	return columns
}

func parseRow(cells []string, columns map[string]int) (shared.Team, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(cells) {
			return ""
		}
		return cells[idx]
	}

	team := shared.Team{
		ID:                 strings.ToUpper(cell("id")),
		Name:               cell("name"),
		RemainingOpponents: parseOpponents(cell("remaining")),
	}
	if team.ID == "" {
		return shared.Team{}, fmt.Errorf("missing team id")
	}

	var err error
	if team.Wins, err = parseCount(cell("wins")); err != nil {
		return shared.Team{}, fmt.Errorf("team %s wins: %w", team.ID, err)
	}
	if team.Losses, err = parseCount(cell("losses")); err != nil {
		return shared.Team{}, fmt.Errorf("team %s losses: %w", team.ID, err)
	}
	return team, nil
}

// parseGrades reads every grade column of a row. Blank cells are skipped
func parseGrades(cells []string, columns map[string]int) (map[string]float64, error) {
	var grades map[string]float64
	for header, idx := range columns {
		name, ok := strings.CutSuffix(header, gradeSuffix)
		name = strings.TrimSpace(name)
		if !ok || name == "" || idx >= len(cells) || cells[idx] == "" {
			continue
		}
		grade, err := strconv.ParseFloat(cells[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("%s grade: %w", name, err)
		}
		if grades == nil {
			grades = make(map[string]float64)
		}
		grades[name] = grade
	}
	return grades, nil
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseOpponents splits "DAL, WAS NYG" into ids, keeping order
func parseOpponents(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	opponents := make([]string, 0, len(fields))
	for _, f := range fields {
		opponents = append(opponents, strings.ToUpper(f))
	}
	return opponents
}
