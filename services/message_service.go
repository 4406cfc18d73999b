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
)

// ChatAuthorizer loads a chat on behalf of one of its parties.
type ChatAuthorizer interface {
	Get(ctx context.Context, caller domain.Identity, chatID string) (domain.Chat, error)
}

type IMessageService interface {
	Send(ctx context.Context, caller domain.Identity, chatID string, draft Draft) (domain.Message, error)
	List(ctx context.Context, caller domain.Identity, chatID string, cursor *string, limit int) ([]domain.Message, *string, error)
}

// MessageService is the message pipeline: authorize, classify, persist,
// then hand over to the fanout.
type MessageService struct {
	log        *slog.Logger
	chats      ChatAuthorizer
	messages   repositories.IMessageRepository
	publisher  contract.Publisher
	classifier Classifier
	locks      *runtime.KeyedMutex
	limits     PageLimits
}

func NewMessageService(log *slog.Logger, chats ChatAuthorizer, messages repositories.IMessageRepository,
	publisher contract.Publisher, classifier Classifier, locks *runtime.KeyedMutex, limits PageLimits) *MessageService {
	return &MessageService{
		log:        log,
		chats:      chats,
		messages:   messages,
		publisher:  publisher,
		classifier: classifier,
		locks:      locks,
		limits:     limits,
	}
}

// Send persists the message and broadcasts it to every connection in the
// chat room, the sender's own connections included. Nothing is broadcast
// when persistence fails.
func (s *MessageService) Send(ctx context.Context, caller domain.Identity, chatID string, draft Draft) (domain.Message, error) {
	chat, err := s.chats.Get(ctx, caller, chatID)
	if err != nil {
		return domain.Message{}, err
	}
	if !chat.IsActive {
		return domain.Message{}, errors.ErrChatInactive
	}
	msgType, metadata, err := s.classifier.Classify(caller.Role(), draft)
	if err != nil {
		return domain.Message{}, err
	}

	// Held until the events are queued so fanout order is persistence order
	unlock := s.locks.Lock(chatID)
	defer unlock()

	msg, chat, err := s.messages.AppendMessage(ctx, domain.Message{
		ChatID:     chatID,
		SenderID:   caller.SenderID(),
		SenderRole: caller.Role(),
		Content:    draft.Content,
		Type:       msgType,
		Metadata:   metadata,
	}, caller.Role() == domain.RoleParticipant)
	if err != nil {
		return domain.Message{}, err
	}
	s.log.Debug("Message persisted", "chat_id", chatID, "message_id", msg.ID, "seq", msg.Seq, "type", msg.Type)

	ctx = context.WithoutCancel(ctx)
	if err = s.publisher.Publish(ctx, event.MessageReceived{Message: msg}); err != nil {
		s.log.Warn("Message not broadcast", "chat_id", chatID, "message_id", msg.ID, "error", err)
	}
	if err = s.publisher.Publish(ctx, event.ChatUpdated{Chat: chat, Reason: event.ReasonMessage, At: msg.CreatedAt}); err != nil {
		s.log.Warn("Chat update not broadcast", "chat_id", chatID, "error", err)
	}
	return msg, nil
}

// List pages through the history of the chat, newest first.
func (s *MessageService) List(ctx context.Context, caller domain.Identity, chatID string, cursor *string, limit int) ([]domain.Message, *string, error) {
	if _, err := s.chats.Get(ctx, caller, chatID); err != nil {
		return nil, nil, err
	}
	page := s.limits.apply(domain.Page{Limit: limit})
	return s.messages.GetMessages(ctx, chatID, cursor, page.Limit)
}
