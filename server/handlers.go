package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/hupe1980/simili"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
)

const maxBodyBytes = 1 << 20

// songResponse is the wire form of a track.
type songResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	Similarity *float64        `json:"similarity,omitempty"`
	Features   features.Record `json:"features"`
}

func newSongResponse(t model.Track) songResponse {
	feats := t.Features
	if feats == nil {
		feats = features.Record{}
	}
	return songResponse{ID: t.ID, Title: t.Title, Artist: t.Artist, Features: feats}
}

type vectorizeResponse struct {
	Vector     features.Vector      `json:"vector"`
	Attributes []string             `json:"attributes"`
	Violations []features.Violation `json:"violations,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to SIMILI API",
		"status":  "online",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, ok := s.limitParam(w, r)
	if !ok {
		return
	}

	tracks, err := s.rec.Search(r.Context(), q, limit)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	out := make([]songResponse, len(tracks))
	for i, t := range tracks {
		out[i] = newSongResponse(t)
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limitParam(w, r)
	if !ok {
		return
	}

	recs, err := s.rec.Recommend(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	out := make([]songResponse, len(recs))
	for i, rec := range recs {
		out[i] = newSongResponse(rec.Track)
		out[i].Similarity = &rec.Similarity
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleVectorize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var rec features.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		s.respondError(w, http.StatusBadRequest, "body must be a JSON object of numeric features")
		return
	}

	resp := vectorizeResponse{
		Vector:     simili.Vectorize(rec),
		Attributes: features.Names(),
	}
	var rangeErr *features.RangeError
	if errors.As(features.Validate(rec), &rangeErr) {
		resp.Violations = rangeErr.Violations
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// limitParam parses the optional limit parameter. Missing means 0 (default
// limit). Values above MaxLimit are capped.
func (s *Server) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	if s.opts.MaxLimit > 0 && n > s.opts.MaxLimit {
		n = s.opts.MaxLimit
	}
	return n, true
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simili.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Song not found")
	case errors.Is(err, simili.ErrInvalidK), errors.Is(err, simili.ErrEmptyQuery):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		var rangeErr *features.RangeError
		if errors.As(err, &rangeErr) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("request failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write JSON response", "error", err)
	}
}
