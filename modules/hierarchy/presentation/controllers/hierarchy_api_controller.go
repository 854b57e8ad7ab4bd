package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/aggregates/person"
	"github.com/hivehr/hivehr/modules/hierarchy/services"
	"github.com/hivehr/hivehr/pkg/application"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type HierarchyAPIController struct {
	app         application.Application
	transitions *services.TransitionService
	exchanges   *services.ExchangeService
	queries     *services.QueryService
	exports     *services.RosterExportService
	basePath    string
}

func NewHierarchyAPIController(app application.Application) application.Controller {
	return &HierarchyAPIController{
		app:         app,
		transitions: app.Service(services.TransitionService{}).(*services.TransitionService),
		exchanges:   app.Service(services.ExchangeService{}).(*services.ExchangeService),
		queries:     app.Service(services.QueryService{}).(*services.QueryService),
		exports:     app.Service(services.RosterExportService{}).(*services.RosterExportService),
		basePath:    "/hierarchy/api",
	}
}

func (c *HierarchyAPIController) Key() string {
	return c.basePath
}

func (c *HierarchyAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()

	router.HandleFunc("/persons/{id}:transition", c.Transition).Methods(http.MethodPost)
	router.HandleFunc("/persons/{id}", c.GetPerson).Methods(http.MethodGet)
	router.HandleFunc("/exchanges/heads", c.ExchangeHeads).Methods(http.MethodPost)
	router.HandleFunc("/exchanges/managers", c.ExchangeManagers).Methods(http.MethodPost)
	router.HandleFunc("/departments", c.ListDepartments).Methods(http.MethodGet)
	router.HandleFunc("/departments/{id}", c.GetDepartment).Methods(http.MethodGet)
	router.HandleFunc("/export/roster", c.ExportRoster).Methods(http.MethodGet)
}

type transitionRequest struct {
	TargetRole         string `json:"target_role" validate:"required,oneof=department_head manager member"`
	TargetDepartmentID string `json:"target_department_id" validate:"omitempty,uuid"`
	ExplicitManagerID  string `json:"explicit_manager_id" validate:"omitempty,uuid"`
}

func (c *HierarchyAPIController) Transition(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePathID(w, r, "id")
	if !ok {
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "HIERARCHY_INVALID_JSON", "invalid json")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "HIERARCHY_VALIDATION", validationMessage(err))
		return
	}

	cmd := services.TransitionCommand{
		PersonID:           personID,
		TargetRole:         person.Role(req.TargetRole),
		TargetDepartmentID: parseOptionalID(req.TargetDepartmentID),
		ExplicitManagerID:  parseOptionalID(req.ExplicitManagerID),
	}

	result, err := c.transitions.ApplyTransition(r.Context(), cmd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":        string(result.Kind),
		"person":      toPersonView(result.Person),
		"affected":    toPersonViews(result.Affected),
		"departments": toDepartmentViews(result.Departments),
	})
}

type exchangeRequest struct {
	PersonA string `json:"person_a" validate:"required,uuid"`
	PersonB string `json:"person_b" validate:"required,uuid"`
}

func (c *HierarchyAPIController) ExchangeHeads(w http.ResponseWriter, r *http.Request) {
	c.exchange(w, r, c.exchanges.ExchangeHeads)
}

func (c *HierarchyAPIController) ExchangeManagers(w http.ResponseWriter, r *http.Request) {
	c.exchange(w, r, c.exchanges.ExchangeManagers)
}

func (c *HierarchyAPIController) exchange(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, a, b uuid.UUID) (*services.ExchangeResult, error),
) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "HIERARCHY_INVALID_JSON", "invalid json")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "HIERARCHY_VALIDATION", validationMessage(err))
		return
	}

	result, err := op(r.Context(), uuid.MustParse(req.PersonA), uuid.MustParse(req.PersonB))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"person_a":    toPersonView(result.PersonA),
		"person_b":    toPersonView(result.PersonB),
		"affected":    toPersonViews(result.Affected),
		"departments": toDepartmentViews(result.Departments),
	})
}

func (c *HierarchyAPIController) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "id")
	if !ok {
		return
	}
	p, err := c.queries.GetPerson(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonView(p))
}

func (c *HierarchyAPIController) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := c.queries.GetDepartment(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	payload := map[string]any{
		"department": toDepartmentView(detail.Department),
		"managers":   toPersonViews(detail.Managers),
		"members":    toPersonViews(detail.Members),
	}
	if detail.Head.IsZero() {
		payload["head"] = nil
	} else {
		payload["head"] = toPersonView(detail.Head)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (c *HierarchyAPIController) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := c.queries.ListDepartments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": toDepartmentViews(departments),
	})
}

func (c *HierarchyAPIController) ExportRoster(w http.ResponseWriter, r *http.Request) {
	content, err := c.exports.ExportRoster(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("roster-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func parsePathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "HIERARCHY_INVALID_ID", fmt.Sprintf("malformed %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalID(raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("invalid field %s", verrs[0].Field())
	}
	return "validation failed"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(err)
	}
}
