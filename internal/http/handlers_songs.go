package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dsjohal14/songstack/internal/scope/db"
	"github.com/go-chi/chi/v5"
)

// Client-facing messages
const (
	msgSongNotFound   = "song not found"
	msgIDNotFound     = "song with id not found"
	msgInvalidJSON    = "Invalid JSON"
	msgInvalidInput   = "Invalid input"
	msgMissingID      = "Missing id field"
	msgInvalidID      = "id must be an integer"
	msgIDChange       = "id field cannot be changed"
	msgObjectIDChange = "_id field cannot be changed"
)

// HandleListSongs returns every song
func (h *Handler) HandleListSongs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.storeContext(r)
	defer cancel()

	songs, err := h.store.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list songs")
		writeError(w, http.StatusInternalServerError, "failed to list songs", "STORE_ERROR")
		return
	}
	if songs == nil {
		songs = []db.Song{}
	}

	writeJSON(w, http.StatusOK, SongsResponse{Songs: songs})
}

// HandleGetSong returns the song with the path id
func (h *Handler) HandleGetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgIDNotFound)
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	song, err := h.store.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgIDNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("song_id", id).Msg("failed to get song")
		writeError(w, http.StatusInternalServerError, "failed to get song", "STORE_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, song)
}

// HandleCreateSong inserts a new song unless its id is already taken.
// A taken id answers with the configured conflict status and a Location
// pointing at the existing song.
func (h *Handler) HandleCreateSong(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.logger.Warn().Err(err).Msg("invalid create request")
		writeMessage(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	song, err := db.ParseSong(body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("invalid create request")
		writeMessage(w, http.StatusBadRequest, createErrorMessage(err))
		return
	}
	id, _ := song.ID()

	ctx, cancel := h.storeContext(r)
	defer cancel()

	created, err := h.store.Create(ctx, song)
	if errors.Is(err, db.ErrExists) {
		h.logger.Info().Int64("song_id", id).Msg("song already present")
		w.Header().Set("Location", songURL(id))
		writeJSON(w, h.conflictStatus, ConflictResponse{
			Message: fmt.Sprintf("song with id %d already present", id),
		})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("song_id", id).Msg("failed to create song")
		writeError(w, http.StatusInternalServerError, "failed to create song", "STORE_ERROR")
		return
	}

	h.logger.Info().Int64("song_id", id).Msg("song created")

	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateSong merges the body fields into the song with the path id
func (h *Handler) HandleUpdateSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgSongNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		h.logger.Warn().Err(err).Msg("invalid update request")
		writeMessage(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	patch, err := db.ParsePatch(body, id)
	if err != nil {
		h.logger.Warn().Err(err).Int64("song_id", id).Msg("invalid update request")
		writeMessage(w, http.StatusBadRequest, updateErrorMessage(err))
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	updated, err := h.store.Update(ctx, id, patch)
	if errors.Is(err, db.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgSongNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("song_id", id).Msg("failed to update song")
		writeError(w, http.StatusInternalServerError, "failed to update song", "STORE_ERROR")
		return
	}

	h.logger.Info().Int64("song_id", id).Int("fields", len(patch)).Msg("song updated")

	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteSong removes the song with the path id
func (h *Handler) HandleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, msgSongNotFound)
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	err := h.store.Delete(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgSongNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("song_id", id).Msg("failed to delete song")
		writeError(w, http.StatusInternalServerError, "failed to delete song", "STORE_ERROR")
		return
	}

	h.logger.Info().Int64("song_id", id).Msg("song deleted")

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} route parameter; ids overflowing int64 are not found
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func songURL(id int64) string {
	return "/song/" + strconv.FormatInt(id, 10)
}

func createErrorMessage(err error) string {
	switch {
	case errors.Is(err, db.ErrMissingID):
		return msgMissingID
	case errors.Is(err, db.ErrInvalidID):
		return msgInvalidID
	default:
		return msgInvalidJSON
	}
}

func updateErrorMessage(err error) string {
	switch {
	case errors.Is(err, db.ErrIDChange):
		return msgIDChange
	case errors.Is(err, db.ErrObjectIDChange):
		return msgObjectIDChange
	default:
		return msgInvalidInput
	}
}
