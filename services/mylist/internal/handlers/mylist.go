package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/animelist/internal/platform/api"
	"github.com/example/animelist/internal/platform/events"
	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/platform/metrics"
	"github.com/example/animelist/internal/platform/validation"
	"github.com/example/animelist/internal/status"
	"github.com/example/animelist/services/mylist/internal/store"
)

// MsgAlreadyListed is the duplicate-create message clients show verbatim.
const MsgAlreadyListed = "Already on list"

// Deps is shared by the list handlers. UserID scopes every operation.
type Deps struct {
	Store  store.ListStore
	UserID string
	Events *events.Publisher
	Log    *zap.Logger
}

type createRequest struct {
	JikanID int    `json:"jikanId" validate:"gt=0"`
	Title   string `json:"title" validate:"required,max=500"`
	Image   string `json:"image" validate:"omitempty,max=2048"`
	Status  string `json:"status" validate:"omitempty,oneof=WANT_TO_WATCH WATCHING COMPLETED PAUSED DROPPED NOT_INTERESTED"`
}

type updateRequest struct {
	Status string `json:"status" validate:"required,oneof=WANT_TO_WATCH WATCHING COMPLETED PAUSED DROPPED NOT_INTERESTED"`
}

// Routes mounts the list endpoints on r.
func Routes(r chi.Router, d Deps) {
	r.Get("/mylist", ListEntries(d))
	r.Post("/mylist", CreateEntry(d))
	r.Put("/mylist/{id}", UpdateEntry(d))
	r.Delete("/mylist/{id}", DeleteEntry(d))
}

// ListEntries returns the user's entries, optionally filtered by ?status=CODE.
func ListEntries(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var code status.Code
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			c, ok := status.ParseCode(raw)
			if !ok {
				api.BadRequest(w, "INVALID_STATUS", "Invalid status filter", rid, map[string]any{"status": raw})
				return
			}
			code = c
		}

		entries, err := d.Store.List(r.Context(), d.UserID, code)
		if err != nil {
			d.log().Error("list entries", zap.String("request_id", rid), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, entries)
	}
}

// CreateEntry adds an anime to the list, upserting the anime row.
func CreateEntry(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req createRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		req.Status = strings.TrimSpace(req.Status)
		if !validate(w, rid, req) {
			return
		}

		code := status.Default
		if req.Status != "" {
			code = status.Code(req.Status)
		}
		e, err := d.Store.Create(r.Context(), d.UserID, store.NewEntry{
			JikanID: req.JikanID,
			Title:   req.Title,
			Image:   strings.TrimSpace(req.Image),
			Status:  code,
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyListed) {
				metrics.ListMutations.WithLabelValues("create", "conflict").Inc()
				api.Conflict(w, "ALREADY_ON_LIST", MsgAlreadyListed, rid, nil)
				return
			}
			metrics.ListMutations.WithLabelValues("create", "error").Inc()
			d.log().Error("create entry", zap.String("request_id", rid), zap.Int("jikan_id", req.JikanID), zap.Error(err))
			api.Internal(w, rid)
			return
		}

		metrics.ListMutations.WithLabelValues("create", "ok").Inc()
		d.Events.Publish(events.SubjectEntryCreated, "entry_created", d.UserID, map[string]any{
			"entry_id": e.ID,
			"jikan_id": e.JikanID,
			"status":   string(e.Status),
		})
		api.WriteJSON(w, http.StatusCreated, e)
	}
}

// UpdateEntry changes an entry's status.
func UpdateEntry(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", rid, nil)
			return
		}

		var req updateRequest
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		req.Status = strings.TrimSpace(req.Status)
		if !validate(w, rid, req) {
			return
		}

		e, err := d.Store.UpdateStatus(r.Context(), d.UserID, id, status.Code(req.Status))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				metrics.ListMutations.WithLabelValues("update", "not_found").Inc()
				api.NotFound(w, "NOT_FOUND", "List entry not found", rid)
				return
			}
			metrics.ListMutations.WithLabelValues("update", "error").Inc()
			d.log().Error("update entry", zap.String("request_id", rid), zap.String("entry_id", id), zap.Error(err))
			api.Internal(w, rid)
			return
		}

		metrics.ListMutations.WithLabelValues("update", "ok").Inc()
		d.Events.Publish(events.SubjectEntryUpdated, "entry_updated", d.UserID, map[string]any{
			"entry_id": e.ID,
			"jikan_id": e.JikanID,
			"status":   string(e.Status),
		})
		api.WriteJSON(w, http.StatusOK, e)
	}
}

// DeleteEntry removes an entry.
func DeleteEntry(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", rid, nil)
			return
		}

		if err := d.Store.Delete(r.Context(), d.UserID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				metrics.ListMutations.WithLabelValues("delete", "not_found").Inc()
				api.NotFound(w, "NOT_FOUND", "List entry not found", rid)
				return
			}
			metrics.ListMutations.WithLabelValues("delete", "error").Inc()
			d.log().Error("delete entry", zap.String("request_id", rid), zap.String("entry_id", id), zap.Error(err))
			api.Internal(w, rid)
			return
		}

		metrics.ListMutations.WithLabelValues("delete", "ok").Inc()
		d.Events.Publish(events.SubjectEntryDeleted, "entry_deleted", d.UserID, map[string]any{"entry_id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}

func validate(w http.ResponseWriter, rid string, v any) bool {
	err := validation.Struct(v)
	if err == nil {
		return true
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		api.BadRequest(w, "VALIDATION_FAILED", verr.Error(), rid, verr.Details())
		return false
	}
	api.BadRequest(w, "VALIDATION_FAILED", "Invalid request", rid, nil)
	return false
}

func (d Deps) log() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}
