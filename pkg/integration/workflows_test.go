package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relstore/pkg/keys"
)

func seedMovies(t *testing.T, td *TestDatabase) {
	t.Helper()
	movie := td.MustCreate(t, "movie",
		"title year length genre studioName producerNo",
		"String Integer Integer String String Integer",
		"title year")
	MustInsert(t, movie, "Star_Wars", 1977, 124, "sciFi", "Fox", 12345)
	MustInsert(t, movie, "Star_Wars_2", 1980, 124, "sciFi", "Fox", 12345)
	MustInsert(t, movie, "Rocky", 1985, 200, "action", "Universal", 12125)
	MustInsert(t, movie, "Rambo", 1978, 100, "action", "Universal", 32355)

	studio := td.MustCreate(t, "studio", "name address presNo", "String String Integer", "name")
	MustInsert(t, studio, "Fox", "Los_Angeles", 7777)
	MustInsert(t, studio, "Universal", "Universal_City", 8888)
	MustInsert(t, studio, "DreamWorks", "Universal_City", 9999)

	cinema := td.MustCreate(t, "cinema",
		"title year length genre studioName producerNo",
		"String Integer Integer String String Integer",
		"title year")
	MustInsert(t, cinema, "Galaxy_Quest", 1999, 104, "comedy", "DreamWorks", 67890)
	MustInsert(t, cinema, "Rocky", 1985, 200, "action", "Universal", 12125)
}

// query chains several operators the way a user session would.
func query(t *testing.T, td *TestDatabase) []string {
	t.Helper()
	movie, err := td.DB.Table("movie")
	require.NoError(t, err)
	cinema, err := td.DB.Table("cinema")
	require.NoError(t, err)
	studio, err := td.DB.Table("studio")
	require.NoError(t, err)

	all, err := movie.Union(cinema)
	require.NoError(t, err)
	onlyMovie, err := movie.Minus(cinema)
	require.NoError(t, err)
	require.Equal(t, 3, onlyMovie.Len())

	recent, err := all.SelectString("year > 1979")
	require.NoError(t, err)
	joined, err := recent.IndexedJoin([]string{"studioName"}, []string{"name"}, studio)
	require.NoError(t, err)
	out, err := joined.Project("title", "address")
	require.NoError(t, err)
	return Rows(out)
}

func TestWorkflow_QueryChain(t *testing.T) {
	td := SetupTestDB(t)
	defer td.Cleanup()
	seedMovies(t, td)

	assert.Equal(t, []string{
		"Star_Wars_2\tLos_Angeles",
		"Rocky\tUniversal_City",
		"Galaxy_Quest\tUniversal_City",
	}, query(t, td))
}

func TestWorkflow_SurvivesRestart(t *testing.T) {
	td := SetupTestDB(t)
	seedMovies(t, td)
	before := query(t, td)
	td.Cleanup()

	reopened := OpenTestDB(t, td.DataDir)
	defer reopened.Cleanup()

	names, err := reopened.DB.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cinema", "movie", "studio"}, names)
	assert.Equal(t, before, query(t, reopened))

	movie, err := reopened.DB.Table("movie")
	require.NoError(t, err)
	k, err := keys.FromValues("Star_Wars", 1977)
	require.NoError(t, err)
	assert.Equal(t, 1, movie.SelectKey(k).Len())
}

func TestWorkflow_NaturalJoinAfterReload(t *testing.T) {
	td := SetupTestDB(t)
	defer td.Cleanup()
	seedMovies(t, td)

	cast := td.MustCreate(t, "cast", "title year star", "String Integer String", "title year star")
	MustInsert(t, cast, "Rocky", 1985, "Sylvester_Stallone")
	MustInsert(t, cast, "Galaxy_Quest", 1999, "Tim_Allen")

	_, err := td.DB.Save("cast")
	require.NoError(t, err)
	reloaded, err := td.DB.Load("cast")
	require.NoError(t, err)

	movie, err := td.DB.Table("movie")
	require.NoError(t, err)
	nj, err := movie.NaturalJoin(reloaded)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rocky\t1985\t200\taction\tUniversal\t12125\tSylvester_Stallone"}, Rows(nj))
}
