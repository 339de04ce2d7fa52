package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jobtrackr/apiserver/internal/auth"
	"github.com/jobtrackr/apiserver/internal/services"
	"github.com/jobtrackr/apiserver/internal/store"
)

const (
	maxResumeMemory = 8 << 20
	maxResumeBytes  = 16 << 20
	formFieldResume = "resume"
)

// UploadResume attaches a resume file to an application.
func (h *ApplicationHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxResumeMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldResume)
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxResumeBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	updated, err := h.appService.AttachResume(r.Context(), id, ownerID, header.Filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "application not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store resume")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DownloadResume streams the stored resume back to its owner.
func (h *ApplicationHandler) DownloadResume(w http.ResponseWriter, r *http.Request) {
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

	reader, resume, err := h.appService.OpenResume(r.Context(), id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, services.ErrNoResume) {
			writeError(w, http.StatusNotFound, "resume not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch resume")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", resume.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

// RemoveResume deletes the stored resume from an application.
func (h *ApplicationHandler) RemoveResume(w http.ResponseWriter, r *http.Request) {
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

	if err := h.appService.RemoveResume(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, services.ErrNoResume) {
			writeError(w, http.StatusNotFound, "resume not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete resume")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "resume deleted"})
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
