package services

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/repositories"
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	UniqueID string `json:"uniqueId" validate:"omitempty,max=63,hostname_rfc1123"`
}

type IProjectService interface {
	CreateProject(ctx context.Context, caller domain.Identity, req CreateProjectRequest) (domain.Project, error)
	ListProjects(ctx context.Context, caller domain.Identity) ([]domain.Project, error)
	GetProject(ctx context.Context, caller domain.Identity, projectID string) (domain.Project, error)
	Owned(ctx context.Context, caller domain.Identity, projectID string) (domain.Project, error)
}

// ProjectService manages the projects an admin owns. Participants never
// see projects directly.
type ProjectService struct {
	log      *slog.Logger
	projects repositories.IProjectRepository
}

func NewProjectService(log *slog.Logger, projects repositories.IProjectRepository) *ProjectService {
	return &ProjectService{log: log, projects: projects}
}

func (s *ProjectService) CreateProject(ctx context.Context, caller domain.Identity, req CreateProjectRequest) (domain.Project, error) {
	admin, ok := caller.(domain.AdminCaller)
	if !ok {
		return domain.Project{}, errors.ErrForbidden
	}
	req.Name = strings.TrimSpace(req.Name)
	req.UniqueID = strings.ToLower(strings.TrimSpace(req.UniqueID))
	if err := auth.Validate(req); err != nil {
		return domain.Project{}, err
	}
	if req.UniqueID == "" {
		req.UniqueID = uuid.NewString()
	}

	project, err := s.projects.CreateProject(ctx, admin.AdminID, req.Name, req.UniqueID)
	if err != nil {
		return domain.Project{}, err
	}
	s.log.Info("Project created", "project_id", project.ID, "admin_id", admin.AdminID)
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, caller domain.Identity) ([]domain.Project, error) {
	admin, ok := caller.(domain.AdminCaller)
	if !ok {
		return nil, errors.ErrForbidden
	}
	return s.projects.ListProjects(ctx, admin.AdminID)
}

func (s *ProjectService) GetProject(ctx context.Context, caller domain.Identity, projectID string) (domain.Project, error) {
	return s.Owned(ctx, caller, projectID)
}

// Owned loads the project and checks that caller is the admin owning it.
// Another admin's project reads as missing so its id does not leak.
func (s *ProjectService) Owned(ctx context.Context, caller domain.Identity, projectID string) (domain.Project, error) {
	admin, ok := caller.(domain.AdminCaller)
	if !ok {
		return domain.Project{}, errors.ErrForbidden
	}
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.OwnerID != admin.AdminID {
		return domain.Project{}, errors.ErrProjectNotFound
	}
	return project, nil
}
