package http

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/watch/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

type destinationRequest struct {
	StreamID string `json:"stream_id"`
}

type watchRequest struct {
	SourceStreamID string `json:"source_stream_id"`
	AuthorID       int64  `json:"author_id"`
	DisplayName    string `json:"display_name"`
}

type filterRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type migrationRequest struct {
	OldStreamID string `json:"old_stream_id"`
	NewStreamID string `json:"new_stream_id"`
}

type migrationResponse struct {
	Moved int64 `json:"moved"`
}

func (s *Server) handleGetDestination(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}

	destination, err := s.watches.GetDestination(r.Context(), watcherID)
	if stderrors.Is(err, errors.ErrDestinationNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, destination)
}

func (s *Server) handleSetDestination(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}

	var req destinationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StreamID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "stream_id is required"})
		return
	}

	destination, err := s.watches.SetDestination(r.Context(), watcherID, req.StreamID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, destination)
}

func (s *Server) handleRemoveDestination(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}

	err := s.watches.RemoveDestination(r.Context(), watcherID)
	if stderrors.Is(err, errors.ErrDestinationNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}

	subscriptions, err := s.watches.ListSubscriptions(r.Context(), watcherID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if subscriptions == nil {
		subscriptions = []*domain.Subscription{}
	}
	writeJSON(w, http.StatusOK, subscriptions)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}

	var req watchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SourceStreamID == "" || req.AuthorID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "source_stream_id and author_id are required"})
		return
	}

	subscription, err := s.watches.Watch(r.Context(), watcherID, req.SourceStreamID, req.AuthorID, req.DisplayName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscription)
}

func (s *Server) handleUnwatch(w http.ResponseWriter, r *http.Request) {
	watcherID, ok := pathID(w, r, "watcherID")
	if !ok {
		return
	}
	subscriptionID, ok := pathID(w, r, "subscriptionID")
	if !ok {
		return
	}

	if err := s.watches.Unwatch(r.Context(), watcherID, subscriptionID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := pathID(w, r, "subscriptionID")
	if !ok {
		return
	}

	filters, err := s.watches.ListFilters(r.Context(), subscriptionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if filters == nil {
		filters = []domain.Filter{}
	}
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) handleAddFilter(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := pathID(w, r, "subscriptionID")
	if !ok {
		return
	}

	var req filterRequest
	if !decode(w, r, &req) {
		return
	}

	filter, err := domain.ParseFilter(req.Kind, req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filter, err = s.watches.AddFilter(r.Context(), subscriptionID, filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, filter)
}

func (s *Server) handleRemoveFilter(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := pathID(w, r, "subscriptionID")
	if !ok {
		return
	}
	filterID, ok := pathID(w, r, "filterID")
	if !ok {
		return
	}

	if err := s.watches.RemoveFilter(r.Context(), subscriptionID, filterID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMigration(w http.ResponseWriter, r *http.Request) {
	var req migrationRequest
	if !decode(w, r, &req) {
		return
	}

	moved, err := s.migration.Correct(r.Context(), req.OldStreamID, req.NewStreamID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, migrationResponse{Moved: moved})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: name + " must be an integer"})
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
