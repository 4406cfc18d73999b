package services

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/repositories"
	"context"
	"log/slog"
	"strings"
)

// PageLimits bounds offset listings.
type PageLimits struct {
	Default int
	Max     int
}

func (l PageLimits) apply(page domain.Page) domain.Page {
	return page.Normalize(l.Default, l.Max)
}

// ProjectOwnership checks that a caller may administer a project.
type ProjectOwnership interface {
	Owned(ctx context.Context, caller domain.Identity, projectID string) (domain.Project, error)
}

// SessionCloser drops the live connections of an identity.
type SessionCloser interface {
	Disconnect(identity domain.Identity, reason string) int
}

type CreateParticipantRequest struct {
	ParticipantUID string `json:"participantUid" validate:"required,max=128"`
	domain.Profile
}

type IParticipantService interface {
	Create(ctx context.Context, caller domain.Identity, projectID string, req CreateParticipantRequest) (domain.Participant, error)
	Get(ctx context.Context, caller domain.Identity, projectID, participantID string) (domain.Participant, error)
	GetByUID(ctx context.Context, caller domain.Identity, projectID, uid string) (domain.Participant, error)
	List(ctx context.Context, caller domain.Identity, projectID string, page domain.Page) ([]domain.Participant, error)
	Count(ctx context.Context, caller domain.Identity, projectID string) (int, error)
	Delete(ctx context.Context, caller domain.Identity, projectID, participantID string) error
}

// ParticipantService is the participant directory. Every read is scoped to
// one project: an id from another project is simply not found.
type ParticipantService struct {
	log          *slog.Logger
	projects     ProjectOwnership
	participants repositories.IParticipantRepository
	sessions     SessionCloser
	limits       PageLimits
}

func NewParticipantService(log *slog.Logger, projects ProjectOwnership,
	participants repositories.IParticipantRepository, sessions SessionCloser, limits PageLimits) *ParticipantService {
	return &ParticipantService{log: log, projects: projects, participants: participants, sessions: sessions, limits: limits}
}

func (s *ParticipantService) Create(ctx context.Context, caller domain.Identity, projectID string, req CreateParticipantRequest) (domain.Participant, error) {
	if _, err := s.projects.Owned(ctx, caller, projectID); err != nil {
		return domain.Participant{}, err
	}
	req.ParticipantUID = strings.TrimSpace(req.ParticipantUID)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := auth.Validate(req); err != nil {
		return domain.Participant{}, err
	}

	participant, err := s.participants.CreateParticipant(ctx, domain.Participant{
		ProjectID:      projectID,
		ParticipantUID: req.ParticipantUID,
		DisplayName:    req.DisplayName,
	})
	if err != nil {
		return domain.Participant{}, err
	}
	s.log.Info("Participant created", "project_id", projectID, "participant_id", participant.ID)
	return participant, nil
}

func (s *ParticipantService) Get(ctx context.Context, caller domain.Identity, projectID, participantID string) (domain.Participant, error) {
	if err := s.canRead(ctx, caller, projectID, func(p domain.ParticipantCaller) bool {
		return p.ParticipantID == participantID
	}); err != nil {
		return domain.Participant{}, err
	}
	return s.participants.GetParticipant(ctx, projectID, participantID)
}

func (s *ParticipantService) GetByUID(ctx context.Context, caller domain.Identity, projectID, uid string) (domain.Participant, error) {
	if err := s.canRead(ctx, caller, projectID, func(p domain.ParticipantCaller) bool {
		return p.ParticipantUID == uid
	}); err != nil {
		return domain.Participant{}, err
	}
	return s.participants.GetParticipantByUID(ctx, projectID, uid)
}

func (s *ParticipantService) List(ctx context.Context, caller domain.Identity, projectID string, page domain.Page) ([]domain.Participant, error) {
	if _, err := s.projects.Owned(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.participants.ListParticipants(ctx, projectID, s.limits.apply(page))
}

func (s *ParticipantService) Count(ctx context.Context, caller domain.Identity, projectID string) (int, error) {
	if _, err := s.projects.Owned(ctx, caller, projectID); err != nil {
		return 0, err
	}
	return s.participants.CountParticipants(ctx, projectID)
}

func (s *ParticipantService) Delete(ctx context.Context, caller domain.Identity, projectID, participantID string) error {
	if _, err := s.projects.Owned(ctx, caller, projectID); err != nil {
		return err
	}
	if err := s.participants.DeleteParticipant(ctx, projectID, participantID); err != nil {
		return err
	}
	closed := s.sessions.Disconnect(domain.ParticipantCaller{ProjectID: projectID, ParticipantID: participantID}, "participant deleted")
	s.log.Info("Participant deleted", "project_id", projectID, "participant_id", participantID, "closed_connections", closed)
	return nil
}

// canRead lets the owning admin read any participant of the project and a
// participant read only itself.
func (s *ParticipantService) canRead(ctx context.Context, caller domain.Identity, projectID string, self func(domain.ParticipantCaller) bool) error {
	switch id := caller.(type) {
	case domain.AdminCaller:
		_, err := s.projects.Owned(ctx, caller, projectID)
		return err
	case domain.ParticipantCaller:
		if id.ProjectID != projectID {
			return errors.ErrNoSuchParticipant
		}
		if !self(id) {
			return errors.ErrForbidden
		}
		return nil
	default:
		return errors.ErrForbidden
	}
}
