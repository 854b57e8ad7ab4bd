package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hivehr/hivehr/modules/audit/domain/aggregates/entry"
	"github.com/hivehr/hivehr/modules/audit/services"
	"github.com/hivehr/hivehr/pkg/application"
	"github.com/hivehr/hivehr/pkg/httpapi"
)

type AuditAPIController struct {
	app      application.Application
	audits   *services.AuditService
	basePath string
}

func NewAuditAPIController(app application.Application) application.Controller {
	return &AuditAPIController{
		app:      app,
		audits:   app.Service(services.AuditService{}).(*services.AuditService),
		basePath: "/audit/api",
	}
}

func (c *AuditAPIController) Key() string {
	return c.basePath
}

func (c *AuditAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()

	router.HandleFunc("/entries", c.List).Methods(http.MethodGet)
}

func (c *AuditAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &entry.FindParams{Limit: 50}
	q := r.URL.Query()

	params.Action = q.Get("action")
	if raw := q.Get("person_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "AUDIT_INVALID_ID", "malformed person_id", nil)
			return
		}
		params.PersonID = id
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "AUDIT_INVALID_RANGE", "malformed from", nil)
			return
		}
		params.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "AUDIT_INVALID_RANGE", "malformed to", nil)
			return
		}
		params.To = ts
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "AUDIT_INVALID_PAGE", "malformed limit", nil)
			return
		}
		params.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "AUDIT_INVALID_PAGE", "malformed offset", nil)
			return
		}
		params.Offset = offset
	}

	items, total, err := c.audits.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "AUDIT_INTERNAL", "internal error", nil)
		return
	}

	views := make([]entryView, 0, len(items))
	for _, e := range items {
		views = append(views, toEntryView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": views,
		"total": total,
	})
}

type entryView struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	PersonIDs  []string          `json:"person_ids"`
	Payload    map[string]string `json:"payload"`
	OccurredAt string            `json:"occurred_at"`
}

func toEntryView(e entry.Entry) entryView {
	ids := e.PersonIDs()
	rawIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		rawIDs = append(rawIDs, id.String())
	}
	return entryView{
		ID:         e.ID().String(),
		Action:     e.Action(),
		PersonIDs:  rawIDs,
		Payload:    e.Payload(),
		OccurredAt: e.OccurredAt().UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(fmt.Errorf("encode response: %w", err))
	}
}
