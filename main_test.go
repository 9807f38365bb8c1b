/* main_test.go
 * Contains unit tests for the helpers in utils.go
 */

package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"nfl-stats-lab/api/api"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region parseSurfaces tests

func TestParseSurfaces(t *testing.T) {
	cases := []struct {
		in       string
		bot, web bool
	}{
		{"bot,web", true, true},
		{" WEB ", false, true},
		{"bot,", true, false},
		{"web,bot,web", true, true},
	}
	for _, c := range cases {
		s, err := parseSurfaces(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, surfaces{Bot: c.bot, Web: c.web}, s, c.in)
	}
}

func TestParseSurfaces_Unknown(t *testing.T) {
	_, err := parseSurfaces("bot,telegram")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
}

func TestParseSurfaces_Empty(t *testing.T) {
	for _, in := range []string{"", " , "} {
		_, err := parseSurfaces(in)
		assert.Error(t, err, in)
	}
}

// endregion

// region importSheet tests

const importPage = `
<table>
  <tr><th>id</th><th>name</th><th>wins</th><th>losses</th><th>remaining</th><th>offense grade</th></tr>
  <tr><td>KC</td><td>Kansas City Chiefs</td><td>11</td><td>1</td><td>LV</td><td>88.5</td></tr>
  <tr><td>LV</td><td>Las Vegas Raiders</td><td>2</td><td>10</td><td>KC</td><td></td></tr>
</table>`

func sheetServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportSheet_StoresTeamsAndGrades(t *testing.T) {
	st := api.NewMockStore()
	srv := sheetServer(t, importPage)

	err := importSheet(t.Context(), st, srv.URL)

	require.NoError(t, err)
	teams, err := st.FetchTeams(t.Context())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "KC", teams[0].ID)
	assert.Equal(t, []string{"LV"}, teams[0].RemainingOpponents)

	analytics, err := st.FetchAnalytics(t.Context())
	require.NoError(t, err)
	require.Len(t, analytics, 1)
	assert.Equal(t, 88.5, analytics["KC"].Grades["offense"])
}

func TestImportSheet_NoGradesKeepsAnalytics(t *testing.T) {
	st := api.NewMockStore()
	before, err := st.FetchAnalytics(t.Context())
	require.NoError(t, err)
	srv := sheetServer(t, `<table><tr><th>id</th><th>wins</th></tr><tr><td>KC</td><td>11</td></tr></table>`)

	require.NoError(t, importSheet(t.Context(), st, srv.URL))

	after, err := st.FetchAnalytics(t.Context())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportSheet_StoreErrors(t *testing.T) {
	srv := sheetServer(t, importPage)

	st := api.NewMockStore()
	st.StoreTeamsError = errors.New("mongo down")
	err := importSheet(t.Context(), st, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imported teams")

	st = api.NewMockStore()
	st.StoreAnalyticsError = errors.New("mongo down")
	err = importSheet(t.Context(), st, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imported grades")
}

func TestImportSheet_BadPage(t *testing.T) {
	st := api.NewMockStore()
	srv := sheetServer(t, `<p>nothing here</p>`)

	err := importSheet(t.Context(), st, srv.URL)

	require.Error(t, err)
	teams, _ := st.FetchTeams(t.Context())
	assert.Len(t, teams, 4, "stored teams are untouched when the page cannot be parsed")
}

// endregion
