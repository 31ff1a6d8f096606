package relation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newMovieTable(t *testing.T, env *Env) *Table {
	t.Helper()
	movie, err := NewTableFromStrings(env, "movie",
		"title year length genre studioName producerNo",
		"String Integer Integer String String Integer",
		"title year")
	require.NoError(t, err)

	require.NoError(t, movie.InsertValues("Star_Wars", 1977, 124, "sciFi", "Fox", 12345))
	require.NoError(t, movie.InsertValues("Star_Wars_2", 1980, 124, "sciFi", "Fox", 12345))
	require.NoError(t, movie.InsertValues("Rocky", 1985, 200, "action", "Universal", 12125))
	require.NoError(t, movie.InsertValues("Rambo", 1978, 100, "action", "Universal", 32355))
	return movie
}

func newStudioTable(t *testing.T, env *Env) *Table {
	t.Helper()
	studio, err := NewTableFromStrings(env, "studio",
		"name address presNo",
		"String String Integer",
		"name")
	require.NoError(t, err)

	require.NoError(t, studio.InsertValues("Fox", "Los_Angeles", 7777))
	require.NoError(t, studio.InsertValues("Universal", "Universal_City", 8888))
	require.NoError(t, studio.InsertValues("DreamWorks", "Universal_City", 9999))
	return studio
}

func newStarsInTable(t *testing.T, env *Env) *Table {
	t.Helper()
	starsIn, err := NewTableFromStrings(env, "starsIn",
		"movieTitle movieYear starName",
		"String Integer String",
		"movieTitle movieYear starName")
	require.NoError(t, err)

	require.NoError(t, starsIn.InsertValues("Star_Wars", 1977, "Carrie_Fisher"))
	require.NoError(t, starsIn.InsertValues("Star_Wars", 1977, "Mark_Hamill"))
	require.NoError(t, starsIn.InsertValues("Rambo", 1978, "Sylvester_Stallone"))
	require.NoError(t, starsIn.InsertValues("Star_Wars", 2020, "Nobody"))
	return starsIn
}

// rowStrings renders every row of tbl in order.
func rowStrings(tbl *Table) []string {
	var out []string
	for r := range tbl.All() {
		out = append(out, r.String())
	}
	return out
}
