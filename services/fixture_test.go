package services

import (
	"chat-desk/domain"
	"chat-desk/domain/event"
	"chat-desk/repositories"
	"chat-desk/runtime"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) TryPublish(e event.DomainEvent) bool {
	return p.Publish(context.Background(), e) == nil
}

func (p *recordingPublisher) published() []event.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.DomainEvent(nil), p.events...)
}

func (p *recordingPublisher) chatUpdates() []event.ChatUpdated {
	return lo.FilterMap(p.published(), func(e event.DomainEvent, _ int) (event.ChatUpdated, bool) {
		update, ok := e.(event.ChatUpdated)
		return update, ok
	})
}

type staticPresence map[string]domain.PresenceStatus

func (s staticPresence) Status(_ context.Context, identity domain.Identity) (domain.PresenceStatus, error) {
	if status, ok := s[identity.Key()]; ok {
		return status, nil
	}
	return domain.PresenceStatus{Identity: identity.Key()}, nil
}

type recordingSessions struct {
	mu     sync.Mutex
	closed []string
}

func (r *recordingSessions) Disconnect(identity domain.Identity, _ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, identity.Key())
	return 1
}

func (r *recordingSessions) disconnected() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.closed...)
}

// fixture wires the services on a real badger store.
type fixture struct {
	admin        domain.AdminCaller
	project      domain.Project
	participant  domain.Participant
	caller       domain.ParticipantCaller
	publisher    *recordingPublisher
	sessions     *recordingSessions
	projects     *ProjectService
	participants *ParticipantService
	chats        *ChatService
	messages     *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	messageRepository, err := repositories.NewMessageRepository(db, log)
	req.NoError(err)
	t.Cleanup(func() { _ = messageRepository.Close() })

	projectRepository := repositories.NewProjectRepository(db, log)
	participantRepository := repositories.NewParticipantRepository(db, log)
	chatRepository := repositories.NewChatRepository(db, log)
	limits := PageLimits{Default: 50, Max: 100}
	locks := runtime.NewKeyedMutex()

	f := &fixture{admin: domain.AdminCaller{AdminID: "admin-1"}, publisher: &recordingPublisher{}, sessions: &recordingSessions{}}
	f.projects = NewProjectService(log, projectRepository)
	f.participants = NewParticipantService(log, f.projects, participantRepository, f.sessions, limits)
	f.chats = NewChatService(log, ChatServiceDeps{
		Ownership:    f.projects,
		Projects:     projectRepository,
		Participants: participantRepository,
		Chats:        chatRepository,
		Messages:     messageRepository,
		Publisher:    f.publisher,
		Presence:     staticPresence{"admin:admin-1": {Identity: "admin:admin-1", Online: true}},
		Locks:        locks,
		Limits:       limits,
	})
	f.messages = NewMessageService(log, f.chats, messageRepository, f.publisher, NewClassifier(1000), locks, limits)

	f.project, err = f.projects.CreateProject(ctx, f.admin, CreateProjectRequest{Name: "Acme", UniqueID: "acme"})
	req.NoError(err)
	f.participant, err = f.participants.Create(ctx, f.admin, f.project.ID, CreateParticipantRequest{
		ParticipantUID: "uid-1",
		Profile:        domain.Profile{DisplayName: "Jane"},
	})
	req.NoError(err)
	f.caller = f.participant.Identity()
	return f
}
