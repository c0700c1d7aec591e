package api

import (
	"fmt"
	"net/http"

	"github.com/CampusStoresCanada/csc-institution-management/internal/application"
	"github.com/rs/zerolog"
)

// FilesHandler serves file uploads and issue reports.
type FilesHandler struct {
	uploads *application.UploadService
	reports *application.ReportService
	logger  zerolog.Logger
}

// NewFilesHandler creates the files handler.
func NewFilesHandler(uploads *application.UploadService, reports *application.ReportService, logger zerolog.Logger) *FilesHandler {
	return &FilesHandler{uploads: uploads, reports: reports, logger: logger}
}

type uploadRequest struct {
	Files []application.FileUpload `json:"files"`
}

// Upload stores a batch of base64-encoded files in object storage.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Files) == 0 {
		respondError(w, http.StatusBadRequest, "No files provided", "")
		return
	}

	result, err := h.uploads.Upload(r.Context(), ac, req.Files)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to upload files")
		return
	}

	total := len(result.OtherFiles)
	if result.CatalogueURL != "" {
		total++
	}
	if result.HighlightImageURL != "" {
		total++
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"uploadResults": result,
		"message":       fmt.Sprintf("Successfully uploaded %d files", total),
	})
}

type issueReportRequest struct {
	Issues        []application.Issue `json:"issues"`
	ReporterName  string              `json:"reporterName"`
	ReporterEmail string              `json:"reporterEmail"`
}

// ReportIssues emails the organization's primary contact a consolidated
// list of reported data issues.
func (h *FilesHandler) ReportIssues(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	var req issueReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Issues) == 0 {
		respondError(w, http.StatusBadRequest, "No issues provided", "")
		return
	}

	receipt, err := h.reports.SendIssueReport(r.Context(), ac, req.ReporterName, req.ReporterEmail, req.Issues)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to send issue report")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"message":             fmt.Sprintf("Report sent to %s", receipt.PrimaryContactName),
		"primaryContactEmail": receipt.PrimaryContactEmail,
		"issueCount":          receipt.IssueCount,
	})
}
