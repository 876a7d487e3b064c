package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"auditdesk/internal/utils"
	"auditdesk/pkg/types"
)

const projectCodeAttempts = 5

var typeAbbreviations = map[string]string{
	"statutory audit": "SA",
	"tax audit":       "TA",
	"internal audit":  "IA",
	"gst audit":       "GST",
}

type NewProject struct {
	ProjectCode    string   `json:"projectCode"`
	ClientID       string   `json:"clientId"`
	ProjectType    string   `json:"projectType"`
	Period         *string  `json:"period"`
	CompletionDate *string  `json:"completionDate"`
	ProjectValue   *float64 `json:"projectValue"`
	TeamLeadID     *string  `json:"teamLeadId"`
}

type NewTeamMember struct {
	UserID         string  `json:"userId"`
	WorkPercentage int     `json:"workPercentage"`
	Role           *string `json:"role"`
}

// TypeAbbreviation returns SA, TA, IA or GST for the known engagement types
// and the uppercase initials of any other type.
func TypeAbbreviation(projectType string) string {
	key := strings.ToLower(strings.Join(strings.Fields(projectType), " "))
	if abbr, ok := typeAbbreviations[key]; ok {
		return abbr
	}

	var b strings.Builder
	for _, word := range strings.Fields(projectType) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}

	if b.Len() == 0 {
		return "PRJ"
	}
	return b.String()
}

func ProjectCodePrefix(clientCode, projectType string, year int) string {
	return fmt.Sprintf("%s-%s-%d", clientCode, TypeAbbreviation(projectType), year)
}

func (s *Service) Projects(ctx context.Context, filter *types.ProjectFilter) ([]*types.Project, error) {
	if filter == nil {
		filter = &types.ProjectFilter{}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("invalid project status %q", filter.Status)
	}

	projects, err := s.store.Projects(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		withDisplayFallbacks(p)
	}
	return projects, nil
}

func (s *Service) Project(ctx context.Context, projectID string) (*types.Project, error) {
	project, err := s.store.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	withDisplayFallbacks(project)
	return project, nil
}

func withDisplayFallbacks(p *types.Project) {
	if strings.TrimSpace(p.TeamLeadName) == "" {
		p.TeamLeadName = types.UnassignedTeamLead
	}
}

// CreateProject validates the references and stores a Planning project. A
// caller-supplied code is used verbatim; otherwise one is generated from the
// client code, project type and year.
func (s *Service) CreateProject(ctx context.Context, in *NewProject) (*types.Project, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, validationError("client id is required")
	}
	if strings.TrimSpace(in.ProjectType) == "" {
		return nil, validationError("project type is required")
	}
	if in.ProjectValue != nil && *in.ProjectValue < 0 {
		return nil, validationError("project value cannot be negative")
	}

	client, err := s.store.Client(ctx, in.ClientID)
	if err != nil {
		return nil, asValidation(err, "client %s does not exist", in.ClientID)
	}

	teamLead := trimmed(in.TeamLeadID)
	if teamLead != nil {
		if _, err := s.store.User(ctx, *teamLead); err != nil {
			return nil, asValidation(err, "team lead %s does not exist", *teamLead)
		}
	}

	completion, err := parseDate("completion date", in.CompletionDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &types.Project{
		ID:             utils.NanoID(),
		ClientID:       client.ID,
		ProjectType:    strings.TrimSpace(in.ProjectType),
		Period:         trimmed(in.Period),
		CompletionDate: completion,
		ProjectValue:   in.ProjectValue,
		TeamLeadID:     teamLead,
		Status:         types.ProjectStatusPlanning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if code := strings.TrimSpace(in.ProjectCode); code != "" {
		project.Code = code
		if err := s.store.CreateProject(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to create project %s: %w", code, err)
		}
		return s.Project(ctx, project.ID)
	}

	prefix := ProjectCodePrefix(client.Code, project.ProjectType, now.Year())
	for attempt := 0; attempt < projectCodeAttempts; attempt++ {
		count, err := s.store.CountProjectCodes(ctx, prefix)
		if err != nil {
			return nil, err
		}

		project.Code = fmt.Sprintf("%s-%02d", prefix, count+1+attempt)
		err = s.store.CreateProject(ctx, project)
		if errors.Is(err, types.ErrConflict) {
			s.logger.WithField("project_code", project.Code).Debug("generated project code taken, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create project: %w", err)
		}

		s.logger.WithField("project_id", project.ID).WithField("project_code", project.Code).Info("project created")
		return s.Project(ctx, project.ID)
	}

	return nil, fmt.Errorf("%w: could not allocate a project code for prefix %s", types.ErrConflict, prefix)
}

func (s *Service) SetProjectStatus(ctx context.Context, projectID string, status types.ProjectStatus) (*types.Project, error) {
	if !status.Valid() {
		return nil, validationError("invalid project status %q", status)
	}

	project, err := s.store.UpdateProjectStatus(ctx, projectID, status)
	if err != nil {
		return nil, err
	}

	withDisplayFallbacks(project)
	return project, nil
}

// DeleteProject removes the project and everything it owns. Stored blobs are
// removed afterwards on a best-effort basis.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	docs, err := s.store.DocumentsByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load project documents: %w", err)
	}

	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	for _, doc := range docs {
		s.removeBlob(ctx, doc)
	}

	s.logger.WithField("project_id", projectID).WithField("documents", len(docs)).Info("project deleted")
	return nil
}

func (s *Service) AddTeamMember(ctx context.Context, projectID string, in *NewTeamMember) (*types.TeamMember, error) {
	if _, err := s.store.Project(ctx, projectID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.UserID) == "" {
		return nil, validationError("user id is required")
	}
	if in.WorkPercentage < 0 || in.WorkPercentage > 100 {
		return nil, validationError("work percentage must be between 0 and 100")
	}

	if _, err := s.store.User(ctx, in.UserID); err != nil {
		return nil, asValidation(err, "user %s does not exist", in.UserID)
	}

	member := &types.TeamMember{
		ProjectID:      projectID,
		UserID:         in.UserID,
		WorkPercentage: in.WorkPercentage,
		Role:           trimmed(in.Role),
		CreatedAt:      s.now(),
	}

	if err := s.store.AddTeamMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add team member: %w", err)
	}
	return member, nil
}

func (s *Service) TeamMembers(ctx context.Context, projectID string) ([]*types.TeamMember, error) {
	if _, err := s.store.Project(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.TeamMembers(ctx, projectID)
}
