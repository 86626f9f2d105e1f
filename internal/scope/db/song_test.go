package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseSong(t *testing.T) {
	song, err := ParseSong([]byte(`{"title": "A", "id": 1, "year": 2014, "score": 4.5}`))
	require.NoError(t, err)

	keys := make([]string, len(song))
	for i, e := range song {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"title", "id", "year", "score"}, keys)

	id, ok := song.ID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	score, _ := song.Lookup("score")
	assert.Equal(t, 4.5, score)
}

func TestParseSongLargeID(t *testing.T) {
	song, err := ParseSong([]byte(`{"id": 3000000000}`))
	require.NoError(t, err)

	id, ok := song.ID()
	require.True(t, ok)
	assert.Equal(t, int64(3000000000), id)
}

func TestParseSongErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected error
	}{
		{"empty body", ``, ErrInvalidJSON},
		{"not json", `song please`, ErrInvalidJSON},
		{"array", `[{"id": 1}]`, ErrInvalidJSON},
		{"string", `"id"`, ErrInvalidJSON},
		{"empty object", `{}`, ErrInvalidJSON},
		{"missing id", `{"title": "A"}`, ErrMissingID},
		{"string id", `{"id": "1"}`, ErrInvalidID},
		{"fractional id", `{"id": 1.5}`, ErrInvalidID},
		{"exponent id", `{"id": 1e3}`, ErrInvalidID},
		{"negative id", `{"id": -1}`, ErrInvalidID},
		{"overflowing id", `{"id": 99999999999999999999}`, ErrInvalidID},
		{"null id", `{"id": null}`, ErrInvalidID},
		{"repeated id", `{"id": 10, "id": 11, "title": "first"}`, ErrInvalidJSON},
		{"repeated field", `{"id": 10, "title": "a", "title": "b"}`, ErrInvalidJSON},
		{"operator field", `{"id": 10, "$inc": {"plays": 1}}`, ErrInvalidJSON},
		{"extended json wrapper", `{"$numberDecimal": "1.5"}`, ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSong([]byte(tt.body))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestParsePatch(t *testing.T) {
	patch, err := ParsePatch([]byte(`{"id": 7, "title": "B"}`), 7)
	require.NoError(t, err)
	_, hasID := patch.Lookup(IDField)
	assert.False(t, hasID, "matching id should be dropped from the merge set")
	title, _ := patch.Lookup("title")
	assert.Equal(t, "B", title)

	patch, err = ParsePatch([]byte(`{"id": 7}`), 7)
	require.NoError(t, err)
	assert.Empty(t, patch)
}

func TestParsePatchErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected error
	}{
		{"invalid json", `{"title":`, ErrInvalidJSON},
		{"empty object", `{}`, ErrInvalidJSON},
		{"array", `[]`, ErrInvalidJSON},
		{"repeated field", `{"title": "a", "title": "b"}`, ErrInvalidJSON},
		{"operator field", `{"$inc": {"plays": 1}}`, ErrInvalidJSON},
		{"different id", `{"id": 8}`, ErrIDChange},
		{"string id", `{"id": "7"}`, ErrIDChange},
		{"object id", `{"_id": {"$oid": "5f1e2d3c4b5a697887960504"}}`, ErrObjectIDChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePatch([]byte(tt.body), 7)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestSongMerge(t *testing.T) {
	song := Song{{Key: "id", Value: int32(1)}, {Key: "title", Value: "A"}, {Key: "artist", Value: "X"}}
	merged := song.Merge(Song{{Key: "title", Value: "B"}, {Key: "year", Value: int32(2020)}})

	assert.Equal(t, Song{
		{Key: "id", Value: int32(1)},
		{Key: "title", Value: "B"},
		{Key: "artist", Value: "X"},
		{Key: "year", Value: int32(2020)},
	}, merged)

	// receiver untouched
	title, _ := song.Lookup("title")
	assert.Equal(t, "A", title)
}

func TestSongWithObjectID(t *testing.T) {
	song := Song{{Key: "id", Value: int32(1)}}

	withOID := song.WithObjectID()
	require.Len(t, withOID, 2)
	assert.Equal(t, ObjectIDField, withOID[0].Key)
	assert.IsType(t, primitive.ObjectID{}, withOID[0].Value)

	again := withOID.WithObjectID()
	assert.Equal(t, withOID, again, "existing _id should be kept")
}

func TestSongJSON(t *testing.T) {
	oid, err := primitive.ObjectIDFromHex("5f1e2d3c4b5a697887960504")
	require.NoError(t, err)

	song := Song{
		{Key: "_id", Value: oid},
		{Key: "id", Value: int32(1)},
		{Key: "title", Value: "A"},
		{Key: "tags", Value: primitive.A{"x", "y"}},
	}

	out, err := json.Marshal(song)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id": {"$oid": "5f1e2d3c4b5a697887960504"}, "id": 1, "title": "A", "tags": ["x", "y"]}`, string(out))

	var decoded Song
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, oid, decoded[0].Value)
	id, ok := decoded.ID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}
