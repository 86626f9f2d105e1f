// Package db provides song storage backends for Songstack.
package db

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names with meaning to the store
const (
	IDField       = "id"  // application-level integer id
	ObjectIDField = "_id" // store-assigned internal id
)

// Validation errors returned by ParseSong and ParsePatch
var (
	ErrInvalidJSON    = errors.New("invalid JSON document")
	ErrMissingID      = errors.New("missing id field")
	ErrInvalidID      = errors.New("id must be a non-negative integer")
	ErrIDChange       = errors.New("id field cannot be changed")
	ErrObjectIDChange = errors.New("_id field cannot be changed")
)

// Song is a schema-flexible song record.
// Field order is preserved and JSON uses relaxed MongoDB Extended JSON,
// so the internal ObjectID renders as {"$oid": "..."}.
type Song bson.D

// ParseSong decodes a create request body into a Song.
// The body must be a non-empty JSON object with a non-negative integer id.
func ParseSong(body []byte) (Song, error) {
	if err := checkObject(body); err != nil {
		return nil, err
	}

	idRes := gjson.GetBytes(body, IDField)
	if !idRes.Exists() {
		return nil, ErrMissingID
	}
	if _, err := integerID(idRes); err != nil {
		return nil, err
	}

	return decode(body)
}

// ParsePatch decodes an update request body into a set of fields to merge.
// An id equal to pathID is dropped; any other id or an _id is rejected.
func ParsePatch(body []byte, pathID int64) (Song, error) {
	if err := checkObject(body); err != nil {
		return nil, err
	}

	if gjson.GetBytes(body, ObjectIDField).Exists() {
		return nil, ErrObjectIDChange
	}

	idRes := gjson.GetBytes(body, IDField)
	if idRes.Exists() {
		if id, err := integerID(idRes); err != nil || id != pathID {
			return nil, ErrIDChange
		}
	}

	patch, err := decode(body)
	if err != nil {
		return nil, err
	}
	return patch.Without(IDField), nil
}

// checkObject requires a valid JSON object with at least one field.
// Top-level keys must be unique and must not start with '$'.
func checkObject(body []byte) error {
	if !gjson.ValidBytes(body) {
		return ErrInvalidJSON
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return ErrInvalidJSON
	}

	var err error
	seen := make(map[string]struct{})
	res.ForEach(func(key, _ gjson.Result) bool {
		if strings.HasPrefix(key.Str, "$") {
			err = fmt.Errorf("%w: reserved field %q", ErrInvalidJSON, key.Str)
			return false
		}
		if _, dup := seen[key.Str]; dup {
			err = fmt.Errorf("%w: duplicate field %q", ErrInvalidJSON, key.Str)
			return false
		}
		seen[key.Str] = struct{}{}
		return true
	})
	if err != nil {
		return err
	}
	if len(seen) == 0 {
		return ErrInvalidJSON
	}
	return nil
}

func decode(body []byte) (Song, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return Song(doc), nil
}

// integerID accepts only plain decimal JSON integers that fit in int64
func integerID(res gjson.Result) (int64, error) {
	if res.Type != gjson.Number || strings.ContainsAny(res.Raw, ".eE") {
		return 0, ErrInvalidID
	}
	id, err := strconv.ParseInt(res.Raw, 10, 64)
	if err != nil || id < 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// Lookup returns the value of a top-level field
func (s Song) Lookup(key string) (interface{}, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// ID returns the application-level id
func (s Song) ID() (int64, bool) {
	v, ok := s.Lookup(IDField)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

// Clone returns a copy of the top-level fields
func (s Song) Clone() Song {
	if s == nil {
		return nil
	}
	out := make(Song, len(s))
	copy(out, s)
	return out
}

// Without returns a copy with the given field removed
func (s Song) Without(key string) Song {
	out := make(Song, 0, len(s))
	for _, e := range s {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Merge returns a copy with patch fields overwritten in place and new fields appended
func (s Song) Merge(patch Song) Song {
	out := s.Clone()
	for _, p := range patch {
		replaced := false
		for i := range out {
			if out[i].Key == p.Key {
				out[i].Value = p.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

// WithObjectID returns a copy carrying an _id, generating one when absent
func (s Song) WithObjectID() Song {
	if _, ok := s.Lookup(ObjectIDField); ok {
		return s.Clone()
	}
	out := make(Song, 0, len(s)+1)
	out = append(out, bson.E{Key: ObjectIDField, Value: primitive.NewObjectID()})
	return append(out, s...)
}

// MarshalJSON renders the song as relaxed Extended JSON
func (s Song) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return bson.MarshalExtJSON(bson.D(s), false, false)
}

// UnmarshalJSON parses relaxed or canonical Extended JSON
func (s *Song) UnmarshalJSON(data []byte) error {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return fmt.Errorf("failed to decode song: %w", err)
	}
	*s = Song(doc)
	return nil
}
