package services

import (
	"chat-desk/contract"
	"chat-desk/domain"
	"chat-desk/domain/event"
	"chat-desk/errors"
	"chat-desk/repositories"
	"chat-desk/runtime"
	"context"
	"log/slog"
	"time"
)

// PresenceReader answers get-online-status.
type PresenceReader interface {
	Status(ctx context.Context, identity domain.Identity) (domain.PresenceStatus, error)
}

type IChatService interface {
	GetOrCreateChat(ctx context.Context, caller domain.Identity, projectID, participantID string) (domain.Chat, error)
	Get(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error)
	ListForAdmin(ctx context.Context, caller domain.Identity, filter domain.ChatFilter) ([]domain.Chat, error)
	ListForProject(ctx context.Context, caller domain.Identity, projectID string, page domain.Page) ([]domain.Chat, error)
	ListForParticipant(ctx context.Context, caller domain.Identity) ([]domain.Chat, error)
	MarkRead(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error)
	Deactivate(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error)
	Presence(ctx context.Context, caller domain.Identity, chatID string) (domain.PresenceStatus, error)
}

// ChatService manages the one-to-one chats between an admin and the
// participants of the admin's projects.
type ChatService struct {
	log          *slog.Logger
	ownership    ProjectOwnership
	projects     repositories.IProjectRepository
	participants repositories.IParticipantRepository
	chats        repositories.IChatRepository
	messages     repositories.IMessageRepository
	publisher    contract.Publisher
	presence     PresenceReader
	locks        *runtime.KeyedMutex
	limits       PageLimits
	now          func() time.Time
}

type ChatServiceDeps struct {
	Ownership    ProjectOwnership
	Projects     repositories.IProjectRepository
	Participants repositories.IParticipantRepository
	Chats        repositories.IChatRepository
	Messages     repositories.IMessageRepository
	Publisher    contract.Publisher
	Presence     PresenceReader
	// Locks is shared with the message service so that reads and sends of
	// one chat reach the fanout in persistence order.
	Locks  *runtime.KeyedMutex
	Limits PageLimits
}

func NewChatService(log *slog.Logger, deps ChatServiceDeps) *ChatService {
	return &ChatService{
		log:          log,
		ownership:    deps.Ownership,
		projects:     deps.Projects,
		participants: deps.Participants,
		chats:        deps.Chats,
		messages:     deps.Messages,
		publisher:    deps.Publisher,
		presence:     deps.Presence,
		locks:        deps.Locks,
		limits:       deps.Limits,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreateChat returns the chat between the project's admin and the
// participant, creating it on first contact. An admin names the participant;
// a participant always talks to the admin owning its project. A deactivated
// chat is reopened.
func (s *ChatService) GetOrCreateChat(ctx context.Context, caller domain.Identity, projectID, participantID string) (domain.Chat, error) {
	var adminID string
	switch id := caller.(type) {
	case domain.AdminCaller:
		if _, err := s.ownership.Owned(ctx, caller, projectID); err != nil {
			return domain.Chat{}, err
		}
		if _, err := s.participants.GetParticipant(ctx, projectID, participantID); err != nil {
			return domain.Chat{}, err
		}
		adminID = id.AdminID
	case domain.ParticipantCaller:
		if id.ProjectID != projectID {
			return domain.Chat{}, errors.ErrProjectNotFound
		}
		if participantID != "" && participantID != id.ParticipantID {
			return domain.Chat{}, errors.ErrForbidden
		}
		project, err := s.projects.GetProject(ctx, projectID)
		if err != nil {
			return domain.Chat{}, err
		}
		adminID, participantID = project.OwnerID, id.ParticipantID
	default:
		return domain.Chat{}, errors.ErrForbidden
	}

	chat, created, err := s.chats.GetOrCreateChat(ctx, projectID, adminID, participantID)
	if err != nil {
		return domain.Chat{}, err
	}
	switch {
	case created:
		s.log.Info("Chat created", "chat_id", chat.ID, "project_id", projectID)
		s.publish(ctx, event.ChatUpdated{Chat: chat, Reason: event.ReasonCreated, At: chat.CreatedAt})
	case !chat.IsActive:
		if chat, err = s.chats.SetActive(ctx, chat.ID, true); err != nil {
			return domain.Chat{}, err
		}
		s.log.Info("Chat reactivated", "chat_id", chat.ID)
		s.publish(ctx, event.ChatUpdated{Chat: chat, Reason: event.ReasonReactivated, At: chat.UpdatedAt})
	}
	return chat, nil
}

// Get returns the chat if caller is one of its two parties.
func (s *ChatService) Get(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !chat.Involves(caller) {
		return domain.Chat{}, errors.ErrForbidden
	}
	return chat, nil
}

func (s *ChatService) ListForAdmin(ctx context.Context, caller domain.Identity, filter domain.ChatFilter) ([]domain.Chat, error) {
	admin, ok := caller.(domain.AdminCaller)
	if !ok {
		return nil, errors.ErrForbidden
	}
	filter.Page = s.limits.apply(filter.Page)
	return s.chats.ListChatsForAdmin(ctx, admin.AdminID, filter)
}

func (s *ChatService) ListForProject(ctx context.Context, caller domain.Identity, projectID string, page domain.Page) ([]domain.Chat, error) {
	if _, err := s.ownership.Owned(ctx, caller, projectID); err != nil {
		return nil, err
	}
	chats, err := s.chats.ListChatsForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	start, end := s.limits.apply(page).Window(len(chats))
	return chats[start:end], nil
}

func (s *ChatService) ListForParticipant(ctx context.Context, caller domain.Identity) ([]domain.Chat, error) {
	participant, ok := caller.(domain.ParticipantCaller)
	if !ok {
		return nil, errors.ErrForbidden
	}
	return s.chats.ListChatsForParticipant(ctx, participant.ProjectID, participant.ParticipantID)
}

// MarkRead marks every message of the counterpart as read. An admin read
// also clears the unread counter.
func (s *ChatService) MarkRead(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error) {
	if _, err := s.Get(ctx, caller, chatID); err != nil {
		return domain.Chat{}, err
	}

	unlock := s.locks.Lock(chatID)
	defer unlock()

	at := s.now()
	chat, flipped, err := s.messages.MarkRead(ctx, chatID, caller.Role(), at)
	if err != nil {
		return domain.Chat{}, err
	}
	if flipped > 0 {
		s.publish(ctx, event.ChatUpdated{
			Chat:      chat,
			Reason:    event.ReasonRead,
			ReadBy:    caller.Role(),
			ReadCount: flipped,
			At:        at,
		})
	}
	return chat, nil
}

// Deactivate closes the chat for new messages. History is kept.
func (s *ChatService) Deactivate(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error) {
	if _, ok := caller.(domain.AdminCaller); !ok {
		return domain.Chat{}, errors.ErrForbidden
	}
	unlock := s.locks.Lock(chatID)
	defer unlock()
	current, err := s.Get(ctx, caller, chatID)
	if err != nil {
		return domain.Chat{}, err
	}
	chat, err := s.chats.SetActive(ctx, chatID, false)
	if err != nil {
		return domain.Chat{}, err
	}
	if current.IsActive {
		s.log.Info("Chat deactivated", "chat_id", chatID)
		s.publish(ctx, event.ChatUpdated{Chat: chat, Reason: event.ReasonDeactivated, At: chat.UpdatedAt})
	}
	return chat, nil
}

// Presence reports the online status of caller's counterpart in the chat.
func (s *ChatService) Presence(ctx context.Context, caller domain.Identity, chatID string) (domain.PresenceStatus, error) {
	chat, err := s.Get(ctx, caller, chatID)
	if err != nil {
		return domain.PresenceStatus{}, err
	}
	return s.presence.Status(ctx, chat.Counterpart(caller))
}

// publish hands the event to the fanout. The change is already persisted so
// a failure here is only logged.
func (s *ChatService) publish(ctx context.Context, evt event.DomainEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.log.Warn("Event not published", "event", evt.Name(), "error", err)
	}
}
