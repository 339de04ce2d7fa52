package handlers

import (
	"net/http"
	"strings"

	"github.com/jobtrackr/apiserver/internal/jobsearch"
)

// JobSearchHandler proxies external job-listing searches.
type JobSearchHandler struct {
	client *jobsearch.Client
}

// NewJobSearchHandler constructs a handler with the provided client.
func NewJobSearchHandler(client *jobsearch.Client) *JobSearchHandler {
	return &JobSearchHandler{client: client}
}

// ExternalJobs forwards a query to the upstream job-search API.
func (h *JobSearchHandler) ExternalJobs(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter")
		return
	}

	data, err := h.client.Search(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch external jobs")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
