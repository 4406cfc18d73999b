package services

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/repositories"
	"context"
	"log/slog"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type IIdentityService interface {
	Resolve(ctx context.Context, credentials auth.Credentials) (domain.Identity, error)
}

// IdentityService turns presented credentials into a caller identity. It
// never touches presence.
type IdentityService struct {
	log          *slog.Logger
	verifier     TokenVerifier
	admins       repositories.IAdminRepository
	projects     repositories.IProjectRepository
	participants repositories.IParticipantRepository
}

func NewIdentityService(log *slog.Logger, verifier TokenVerifier, admins repositories.IAdminRepository,
	projects repositories.IProjectRepository, participants repositories.IParticipantRepository) IIdentityService {
	return &IdentityService{
		log:          log,
		verifier:     verifier,
		admins:       admins,
		projects:     projects,
		participants: participants,
	}
}

// Resolve prefers the admin token when both kinds of credentials are given,
// so a participant header can never downgrade or impersonate an admin.
func (s *IdentityService) Resolve(ctx context.Context, credentials auth.Credentials) (domain.Identity, error) {
	switch {
	case credentials.IsAdmin():
		return s.resolveAdmin(ctx, credentials.Token)
	case credentials.IsParticipant():
		return s.resolveParticipant(ctx, credentials.ProjectID, credentials.ParticipantUID)
	default:
		return nil, errors.ErrMissingCredentials
	}
}

func (s *IdentityService) resolveAdmin(ctx context.Context, token string) (domain.Identity, error) {
	adminID, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	admin, err := s.admins.GetAdmin(ctx, adminID)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		// Signed for an account that no longer exists
		return nil, errors.ErrInvalidToken
	case err != nil:
		return nil, err
	}
	return domain.AdminCaller{AdminID: admin.ID}, nil
}

// resolveParticipant accepts either the project id or its public unique id.
func (s *IdentityService) resolveParticipant(ctx context.Context, projectID, uid string) (domain.Identity, error) {
	participant, err := s.participants.GetParticipantByUID(ctx, projectID, uid)
	if errors.Is(err, errors.ErrNotFound) {
		project, lookupErr := s.projects.GetProjectByUniqueID(ctx, projectID)
		switch {
		case errors.Is(lookupErr, errors.ErrNotFound):
			return nil, errors.ErrParticipantNotFound
		case lookupErr != nil:
			return nil, lookupErr
		}
		participant, err = s.participants.GetParticipantByUID(ctx, project.ID, uid)
	}
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return nil, errors.ErrParticipantNotFound
	case err != nil:
		return nil, err
	}
	return participant.Identity(), nil
}
