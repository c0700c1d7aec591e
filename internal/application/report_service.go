package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/rs/zerolog"
)

// ReportService forwards data-issue reports to the organization's primary
// contact by email.
type ReportService struct {
	directory ports.Directory
	mailer    ports.Mailer
	logger    zerolog.Logger
}

// NewReportService creates a report service. A nil mailer logs reports
// instead of sending them.
func NewReportService(directory ports.Directory, mailer ports.Mailer, logger zerolog.Logger) *ReportService {
	return &ReportService{directory: directory, mailer: mailer, logger: logger}
}

// Issue describes one field the reporter believes is wrong.
type Issue struct {
	FieldLabel       string `json:"fieldLabel"`
	CurrentValue     string `json:"currentValue"`
	IssueDescription string `json:"issueDescription"`
}

// ReportReceipt confirms who the report was delivered to.
type ReportReceipt struct {
	PrimaryContactName  string
	PrimaryContactEmail string
	IssueCount          int
}

// SendIssueReport emails the caller's organization primary a summary of the
// reported issues.
func (s *ReportService) SendIssueReport(ctx context.Context, ac domain.AuthContext, reporterName, reporterEmail string, issues []Issue) (*ReportReceipt, error) {
	if err := ac.RequireOrganization(); err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, fmt.Errorf("no issues in report: %w", domain.ErrInvalidRequest)
	}

	contacts, err := s.directory.ListContactsByOrganization(ctx, ac.OrganizationID)
	if err != nil {
		return nil, err
	}
	var primary *domain.Contact
	for i := range contacts {
		if contacts[i].IsPrimary {
			primary = &contacts[i]
			break
		}
	}
	if primary == nil || primary.Email == "" {
		return nil, fmt.Errorf("organization has no reachable primary contact: %w", domain.ErrNotFound)
	}

	subject := fmt.Sprintf("Organization Data Issues - %s", ac.OrganizationName)
	body := composeIssueReport(primary.Name, reporterName, reporterEmail, issues)

	if s.mailer == nil {
		s.logger.Info().
			Str("to", primary.Email).
			Str("subject", subject).
			Int("issues", len(issues)).
			Msg("Email delivery disabled, issue report logged only")
	} else {
		if err := s.mailer.Send(ctx, primary.Email, subject, body); err != nil {
			return nil, fmt.Errorf("failed to send issue report: %w", err)
		}
		s.logger.Info().
			Str("to", primary.Email).
			Str("organizationID", ac.OrganizationID).
			Int("issues", len(issues)).
			Msg("Issue report sent")
	}

	return &ReportReceipt{
		PrimaryContactName:  primary.Name,
		PrimaryContactEmail: primary.Email,
		IssueCount:          len(issues),
	}, nil
}

func composeIssueReport(primaryName, reporterName, reporterEmail string, issues []Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", primaryName)
	fmt.Fprintf(&b, "%s (%s) has reported %d issue(s) with your organization's data in the CSC Institution Management system.\n\n",
		reporterName, reporterEmail, len(issues))
	for i, issue := range issues {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, issue.FieldLabel)
		fmt.Fprintf(&b, "   Current value: %s\n", issue.CurrentValue)
		fmt.Fprintf(&b, "   Issue: %s\n\n", issue.IssueDescription)
	}
	b.WriteString("Please review and update these fields as needed.\n\n")
	b.WriteString("---\nThis is an automated message from CSC Institution Management.\n")
	return b.String()
}
