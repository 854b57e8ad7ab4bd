package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hivehr/hivehr/modules/attendance/domain/aggregates/punch"
	"github.com/hivehr/hivehr/modules/attendance/services"
	"github.com/hivehr/hivehr/pkg/application"
	"github.com/hivehr/hivehr/pkg/httpapi"
)

type AttendanceAPIController struct {
	app      application.Application
	punches  *services.PunchService
	basePath string
}

func NewAttendanceAPIController(app application.Application) application.Controller {
	return &AttendanceAPIController{
		app:      app,
		punches:  app.Service(services.PunchService{}).(*services.PunchService),
		basePath: "/attendance/api",
	}
}

func (c *AttendanceAPIController) Key() string {
	return c.basePath
}

func (c *AttendanceAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()

	router.HandleFunc("/punches", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/punches", c.List).Methods(http.MethodGet)
}

func (c *AttendanceAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto punch.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_JSON", "invalid json", nil)
		return
	}

	created, err := c.punches.Record(r.Context(), &dto)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_VALIDATION", err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, toPunchView(created))
}

func (c *AttendanceAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &punch.FindParams{Limit: 50}
	q := r.URL.Query()

	if raw := q.Get("person_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_ID", "malformed person_id", nil)
			return
		}
		params.PersonID = id
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_RANGE", "malformed from", nil)
			return
		}
		params.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_RANGE", "malformed to", nil)
			return
		}
		params.To = ts
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_PAGE", "malformed limit", nil)
			return
		}
		params.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_PAGE", "malformed offset", nil)
			return
		}
		params.Offset = offset
	}

	items, total, err := c.punches.GetPaginated(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "ATTENDANCE_INTERNAL", "internal error", nil)
		return
	}

	views := make([]punchView, 0, len(items))
	for _, p := range items {
		views = append(views, toPunchView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": views,
		"total": total,
	})
}

type punchView struct {
	ID           string     `json:"id"`
	PersonID     string     `json:"person_id"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Direction    string     `json:"direction"`
	PunchedAt    string     `json:"punched_at"`
	Note         string     `json:"note,omitempty"`
}

func toPunchView(p punch.Punch) punchView {
	view := punchView{
		ID:        p.ID().String(),
		PersonID:  p.PersonID().String(),
		Direction: string(p.Direction()),
		PunchedAt: p.PunchedAt().UTC().Format(time.RFC3339),
		Note:      p.Note(),
	}
	if deptID := p.DepartmentID(); deptID != uuid.Nil {
		view.DepartmentID = &deptID
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(fmt.Errorf("encode response: %w", err))
	}
}
