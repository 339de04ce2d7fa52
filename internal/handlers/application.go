package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobtrackr/apiserver/internal/auth"
	"github.com/jobtrackr/apiserver/internal/services"
	"github.com/jobtrackr/apiserver/internal/store"
	"github.com/jobtrackr/apiserver/types"
)

// Accepted layouts for a caller-supplied application date.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ApplicationHandler provides HTTP handlers for job applications. All
// routes are protected; the owner id always comes from the request
// context populated by RequireAuth.
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler constructs a handler with the provided service.
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// ApplicationRouter registers application routes on the given router.
// The caller is expected to have applied the auth middleware already.
func ApplicationRouter(r chi.Router, appService *services.ApplicationService) {
	handler := NewApplicationHandler(appService)

	r.Get("/", handler.ListApplications)
	r.Post("/", handler.CreateApplication)
	r.Route("/{applicationID}", func(r chi.Router) {
		r.Put("/", handler.UpdateApplication)
		r.Delete("/", handler.DeleteApplication)
		if appService.ResumesEnabled() {
			r.Post("/resume", handler.UploadResume)
			r.Get("/resume", handler.DownloadResume)
			r.Delete("/resume", handler.RemoveResume)
		}
	})
}

func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	apps, err := h.appService.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	app, err := parseApplicationBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	app.UserID = ownerID

	created, err := h.appService.Create(r.Context(), app)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create application")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseApplicationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := parseApplicationBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	app.ID = id
	app.UserID = ownerID

	updated, err := h.appService.Update(r.Context(), app)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "application not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update application")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseApplicationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.appService.Delete(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "application not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete application")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "application deleted"})
}

// ApplicationUpsertRequest is the JSON body for create and update. Update
// is full-replacement and runs the same validation as create.
type ApplicationUpsertRequest struct {
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	DateApplied string `json:"dateApplied"`
}

func parseApplicationBody(r *http.Request) (types.Application, error) {
	var req ApplicationUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return types.Application{}, errors.New("invalid request")
	}

	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.Company = strings.TrimSpace(req.Company)
	req.Location = strings.TrimSpace(req.Location)
	req.Status = strings.TrimSpace(req.Status)
	req.Notes = strings.TrimSpace(req.Notes)

	if req.JobTitle == "" || req.Company == "" || req.Location == "" || req.Status == "" {
		return types.Application{}, errors.New("missing required fields")
	}

	status, err := types.ParseStatus(req.Status)
	if err != nil {
		return types.Application{}, err
	}

	dateApplied, err := parseDateApplied(req.DateApplied)
	if err != nil {
		return types.Application{}, err
	}

	return types.Application{
		JobTitle:    req.JobTitle,
		Company:     req.Company,
		Location:    req.Location,
		Status:      status,
		Notes:       req.Notes,
		DateApplied: dateApplied,
	}, nil
}

// parseDateApplied defaults an absent date to now. A supplied but
// unparsable value is rejected rather than silently replaced.
func parseDateApplied(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now(), nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid dateApplied")
}

func parseApplicationID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "applicationID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid application id")
	}
	return id, nil
}
