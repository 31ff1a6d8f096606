package snapshot

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relstore/pkg/dberror"
	"relstore/pkg/types"
)

func movieImage() *Image {
	return &Image{
		Name:       "movie",
		Attributes: []string{"title", "year", "rating", "color"},
		Types:      []types.Type{types.StringType, types.IntType, types.FloatType, types.BoolType},
		Key:        []string{"title", "year"},
		Rows: [][]types.Field{
			{types.NewStringField("Star_Wars"), types.NewIntField(1977), types.NewFloat64Field(8.6), types.NewBoolField(true)},
			{types.NewStringField("Metropolis"), types.NewIntField(1927), types.NewFloat64Field(8.3), types.NewBoolField(false)},
			{types.NewStringField("Negative"), types.NewIntField(-40000), types.NewFloat64Field(-0.5), types.NewBoolField(false)},
		},
	}
}

func assertSameImage(t *testing.T, want, got *Image) {
	t.Helper()
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Attributes, got.Attributes)
	assert.Equal(t, want.Types, got.Types)
	assert.Equal(t, want.Key, got.Key)
	require.Len(t, got.Rows, len(want.Rows))
	for i := range want.Rows {
		require.Len(t, got.Rows[i], len(want.Rows[i]))
		for j := range want.Rows[i] {
			assert.True(t, want.Rows[i][j].Equals(got.Rows[i][j]), "row %d col %d: %v != %v", i, j, want.Rows[i][j], got.Rows[i][j])
		}
	}
}

func TestImage_MsgpRoundTrip(t *testing.T) {
	img := movieImage()
	b, err := img.MarshalMsg(nil)
	require.NoError(t, err)

	var got Image
	rest, err := got.UnmarshalMsg(b)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assertSameImage(t, img, &got)
}

func TestImage_Validate(t *testing.T) {
	img := movieImage()
	require.NoError(t, img.Validate())

	img.Rows = append(img.Rows, []types.Field{types.NewStringField("short")})
	assert.Error(t, img.Validate())

	img = movieImage()
	img.Types = img.Types[:2]
	assert.Error(t, img.Validate())
}

func TestStore_SaveLoad(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	img := movieImage()
	meta, err := s.Save(img)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, meta.ID)
	assert.Equal(t, "movie", meta.Table)
	assert.Equal(t, 3, meta.Rows)
	assert.FileExists(t, s.Path("movie"))

	got, loaded, err := s.Load("movie")
	require.NoError(t, err)
	assertSameImage(t, img, got)
	assert.Equal(t, meta.ID, loaded.ID)
	assert.Equal(t, meta.Rows, loaded.Rows)
	assert.True(t, meta.SavedAt.Equal(loaded.SavedAt))
}

func TestStore_SaveReplaces(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	img := movieImage()
	first, err := s.Save(img)
	require.NoError(t, err)

	img.Rows = img.Rows[:1]
	second, err := s.Save(img)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, meta, err := s.Load("movie")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 1)
	assert.Equal(t, second.ID, meta.ID)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestStore_ListAndRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"studio", "movie"} {
		img := movieImage()
		img.Name = name
		_, err := s.Save(img)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"movie", "studio"}, names)

	require.NoError(t, s.Remove("movie"))
	require.NoError(t, s.Remove("movie"))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"studio"}, names)
}

func TestStore_LoadMissing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Load("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberror.ErrSnapshot))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestStore_LoadCorrupted(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path("broken"), []byte{0xc1, 0x00, 0x01}, 0o644))

	_, _, err = s.Load("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberror.ErrSnapshotCorrupted))
}

func TestStore_LoadRenamedFile(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(movieImage())
	require.NoError(t, err)
	require.NoError(t, os.Rename(s.Path("movie"), s.Path("film")))

	_, _, err = s.Load("film")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dberror.ErrSnapshotCorrupted))
	assert.Contains(t, err.Error(), `"movie"`)
}

func TestStore_InvalidName(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	img := movieImage()
	img.Name = "../escape"
	_, err = s.Save(img)
	assert.True(t, errors.Is(err, dberror.ErrSnapshot))

	_, _, err = s.Load("")
	assert.True(t, errors.Is(err, dberror.ErrSnapshot))
}
