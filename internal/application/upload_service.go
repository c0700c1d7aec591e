package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	folderSafe   = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	fileNameSafe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// UploadService stores member-submitted files in object storage under a
// per-organization folder.
type UploadService struct {
	store  ports.ObjectStore
	logger zerolog.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(store ports.ObjectStore, logger zerolog.Logger) *UploadService {
	return &UploadService{store: store, logger: logger}
}

// FileUpload is one file submitted for storage. Content is base64 encoded.
type FileUpload struct {
	FieldName string `json:"fieldName"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

// UploadResult reports where each uploaded file landed.
type UploadResult struct {
	CatalogueURL      string   `json:"catalogueUrl,omitempty"`
	HighlightImageURL string   `json:"highlightImageUrl,omitempty"`
	OtherFiles        []string `json:"otherFiles,omitempty"`
	FolderPath        string   `json:"folderPath"`
}

// Upload stores the given files. Files that fail individually are logged
// and skipped rather than failing the batch.
func (s *UploadService) Upload(ctx context.Context, ac domain.AuthContext, files []FileUpload) (*UploadResult, error) {
	if err := ac.RequireOrganization(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files in upload: %w", domain.ErrInvalidRequest)
	}

	folder := organizationFolder(ac.OrganizationName)
	batchID := uuid.NewString()
	result := &UploadResult{FolderPath: folder}

	for _, f := range files {
		content, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			s.logger.Warn().
				Str("file", f.Name).
				Err(err).
				Msg("Skipping file with undecodable content")
			continue
		}
		key := fmt.Sprintf("%s/%s/%s_%s", folder, subfolderFor(f.FieldName), batchID[:8], sanitizeFileName(f.Name))
		url, err := s.store.Put(ctx, key, f.Type, content)
		if err != nil {
			s.logger.Warn().
				Str("file", f.Name).
				Str("key", key).
				Err(err).
				Msg("Skipping file that failed to store")
			continue
		}
		switch f.FieldName {
		case "catalogFile":
			result.CatalogueURL = url
		case "highlightImage":
			result.HighlightImageURL = url
		default:
			result.OtherFiles = append(result.OtherFiles, url)
		}
	}

	s.logger.Info().
		Str("organizationID", ac.OrganizationID).
		Str("folder", folder).
		Int("files", len(files)).
		Msg("Upload batch processed")
	return result, nil
}

func organizationFolder(name string) string {
	if name == "" {
		name = "unknown-organization"
	}
	cleaned := folderSafe.ReplaceAllString(name, "-")
	return "vendors/" + strings.ReplaceAll(cleaned, " ", "-")
}

func sanitizeFileName(name string) string {
	return fileNameSafe.ReplaceAllString(name, "_")
}

func subfolderFor(fieldName string) string {
	switch fieldName {
	case "catalogFile":
		return "catalogue"
	case "highlightImage":
		return "highlights"
	default:
		return "docs"
	}
}
