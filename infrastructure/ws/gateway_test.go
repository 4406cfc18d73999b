package ws

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/domain/event"
	"chat-desk/repositories"
	"chat-desk/runtime"
	"chat-desk/runtime/workers"
	"chat-desk/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	url         string
	token       string
	project     domain.Project
	participant domain.Participant
	chat        domain.Chat
	other       domain.Participant
	gateway     *Gateway
	admin       domain.AdminCaller
	directory   *services.ParticipantService
}

type received struct {
	Event     string          `json:"event"`
	RequestID string          `json:"requestId"`
	Data      json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
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

	adminRepository := repositories.NewAdminRepository(db, log)
	projectRepository := repositories.NewProjectRepository(db, log)
	participantRepository := repositories.NewParticipantRepository(db, log)
	chatRepository := repositories.NewChatRepository(db, log)

	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log), registry,
		100, time.Second, time.Second, 0)
	runCtx, cancel := context.WithCancel(ctx)
	go orchestrator.Start(runCtx)
	t.Cleanup(cancel)

	tokens := auth.NewTokens("test-secret", "chat-desk", time.Hour)
	limits := services.PageLimits{Default: 50, Max: 100}
	locks := runtime.NewKeyedMutex()
	presence := runtime.NewPresenceTracker(log, registry, orchestrator, adminRepository, chatRepository)
	projects := services.NewProjectService(log, projectRepository)
	participants := services.NewParticipantService(log, projects, participantRepository, presence, limits)
	chats := services.NewChatService(log, services.ChatServiceDeps{
		Ownership:    projects,
		Projects:     projectRepository,
		Participants: participantRepository,
		Chats:        chatRepository,
		Messages:     messageRepository,
		Publisher:    orchestrator,
		Presence:     presence,
		Locks:        locks,
		Limits:       limits,
	})
	messages := services.NewMessageService(log, chats, messageRepository, orchestrator,
		services.NewClassifier(1000), locks, limits)
	identities := services.NewIdentityService(log, tokens, adminRepository, projectRepository, participantRepository)

	gateway := NewGateway(log, Config{
		IdleTimeout:    5 * time.Second,
		WriteTimeout:   time.Second,
		RequestTimeout: time.Second,
		MaxFrameSize:   64 * 1024,
		BufferSize:     64,
	}, identities, presence, registry, chats, messages)
	srv := httptest.NewServer(gateway)
	t.Cleanup(srv.Close)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		_ = gateway.Shutdown(shutdownCtx)
	})

	admin, err := adminRepository.CreateAdmin(ctx, "owner@example.com", "hash")
	req.NoError(err)
	caller := domain.AdminCaller{AdminID: admin.ID}
	token, _, err := tokens.Issue(admin.ID)
	req.NoError(err)

	ts := &testServer{url: "ws" + strings.TrimPrefix(srv.URL, "http"), token: token, gateway: gateway,
		admin: caller, directory: participants}
	ts.project, err = projects.CreateProject(ctx, caller, services.CreateProjectRequest{Name: "Acme"})
	req.NoError(err)
	ts.participant, err = participants.Create(ctx, caller, ts.project.ID, services.CreateParticipantRequest{ParticipantUID: "uid-1"})
	req.NoError(err)
	ts.chat, err = chats.GetOrCreateChat(ctx, caller, ts.project.ID, ts.participant.ID)
	req.NoError(err)

	second, err := projects.CreateProject(ctx, caller, services.CreateProjectRequest{Name: "Other"})
	req.NoError(err)
	ts.other, err = participants.Create(ctx, caller, second.ID, services.CreateParticipantRequest{ParticipantUID: "uid-1"})
	req.NoError(err)
	return ts
}

func (ts *testServer) dial(t *testing.T, query url.Values) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(ts.url+"?"+query.Encode(), nil)
	if err == nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func (ts *testServer) dialAdmin(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := ts.dial(t, url.Values{"token": {ts.token}})
	require.NoError(t, err)
	expect(t, conn, EventConnected)
	return conn
}

func (ts *testServer) dialParticipant(t *testing.T, p domain.Participant) *websocket.Conn {
	t.Helper()
	conn, _, err := ts.dial(t, url.Values{"projectId": {p.ProjectID}, "participantUid": {p.ParticipantUID}})
	require.NoError(t, err)
	expect(t, conn, EventConnected)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventName, requestID string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(InboundFrame{Event: eventName, RequestID: requestID, Data: raw}))
}

// expect reads frames until one named eventName arrives.
func expect(t *testing.T, conn *websocket.Conn, eventName string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var frame received
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Event == eventName {
			return frame
		}
	}
}

func join(t *testing.T, conn *websocket.Conn, chatID string) {
	t.Helper()
	send(t, conn, EventJoinChat, "join", ChatRef{ChatID: chatID})
	ack := expect(t, conn, EventAck)
	require.Equal(t, "join", ack.RequestID)
}

func TestGateway_Rejects_Unknown_Participant(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	conn, _, err := ts.dial(t, url.Values{"projectId": {ts.project.ID}, "participantUid": {"nobody"}})
	req.NoError(err)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	req.ErrorAs(err, &closeErr)
	req.Equal(CloseAuthenticationFailed, closeErr.Code)
	req.Equal("PARTICIPANT_NOT_FOUND", closeErr.Text)
}

func TestGateway_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)

	conn, _, err := ts.dial(t, url.Values{"token": {"not-a-token"}})
	req.NoError(err)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	req.ErrorAs(err, &closeErr)
	req.Equal(CloseAuthenticationFailed, closeErr.Code)
	req.Equal("INVALID_TOKEN", closeErr.Text)
}

func TestGateway_Forbids_Joining_A_Foreign_Chat(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	// Same uid, other project
	intruder, _, err := ts.dial(t, url.Values{"projectId": {ts.other.ProjectID}, "participantUid": {ts.other.ParticipantUID}})
	req.NoError(err)
	var connected ConnectedData
	req.NoError(json.Unmarshal(expect(t, intruder, EventConnected).Data, &connected))

	send(t, intruder, EventJoinChat, "r1", ChatRef{ChatID: ts.chat.ID})
	reply := expect(t, intruder, EventError)
	req.Equal("r1", reply.RequestID)
	var data ErrorData
	req.NoError(json.Unmarshal(reply.Data, &data))
	req.Equal("FORBIDDEN", data.Code)

	// The connection stays usable and did not join the room
	send(t, intruder, EventSendMessage, "r2", SendMessageData{ChatID: ts.chat.ID, Content: "hi"})
	reply = expect(t, intruder, EventError)
	req.Equal("r2", reply.RequestID)
	req.Empty(ts.gateway.rooms.RoomsOf(connected.ConnectionID))
}

func TestGateway_Delivers_Messages_In_Order(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	admin := ts.dialAdmin(t)
	participant := ts.dialParticipant(t, ts.participant)
	join(t, admin, ts.chat.ID)
	join(t, participant, ts.chat.ID)

	// When the participant sends A then B
	send(t, participant, EventSendMessage, "a", SendMessageData{ChatID: ts.chat.ID, Content: "A"})
	send(t, participant, EventSendMessage, "b", SendMessageData{ChatID: ts.chat.ID, Content: "B"})

	// Then the admin receives A then B
	var contents []string
	for range 2 {
		frame := expect(t, admin, event.MessageReceivedName)
		var data struct {
			Message domain.Message `json:"message"`
		}
		req.NoError(json.Unmarshal(frame.Data, &data))
		contents = append(contents, data.Message.Content)
	}
	req.Equal([]string{"A", "B"}, contents)

	// And the sender's own connection receives them too
	frame := expect(t, participant, event.MessageReceivedName)
	req.Contains(string(frame.Data), `"content":"A"`)
}

func TestGateway_Rejects_Too_Long_Message(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	participant := ts.dialParticipant(t, ts.participant)
	join(t, participant, ts.chat.ID)

	send(t, participant, EventSendMessage, "long", SendMessageData{ChatID: ts.chat.ID, Content: strings.Repeat("x", 1001)})

	reply := expect(t, participant, EventError)
	req.Equal("long", reply.RequestID)
	var data ErrorData
	req.NoError(json.Unmarshal(reply.Data, &data))
	req.Equal("CONTENT_TOO_LONG", data.Code)
}

func TestGateway_Presence_Flips_Once_Per_Identity(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	participant := ts.dialParticipant(t, ts.participant)

	// Given two admin connections
	first := ts.dialAdmin(t)
	online := expect(t, participant, event.PresenceChangedName)
	req.Contains(string(online.Data), `"online":true`)
	second := ts.dialAdmin(t)

	// When the first closes, the admin is still online
	req.NoError(first.Close())
	// When the second closes, the admin goes offline
	req.NoError(second.Close())

	offline := expect(t, participant, event.PresenceChangedName)
	req.Contains(string(offline.Data), `"online":false`)
	req.Contains(string(offline.Data), `"lastSeen"`)
}

func TestGateway_Typing_Reaches_The_Counterpart(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	admin := ts.dialAdmin(t)
	participant := ts.dialParticipant(t, ts.participant)

	send(t, participant, EventTyping, "t1", TypingData{ChatID: ts.chat.ID, IsTyping: false})
	frame := expect(t, admin, event.TypingChangedName)
	req.Contains(string(frame.Data), `"isTyping":false`)
}

func TestGateway_Shutdown_Closes_Connections(t *testing.T) {
	req := require.New(t)
	ts := newTestServer(t)
	admin := ts.dialAdmin(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req.NoError(ts.gateway.Shutdown(ctx))

	_ = admin.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := admin.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			req.ErrorAs(err, &closeErr)
			req.Equal(websocket.CloseGoingAway, closeErr.Code)
			break
		}
	}

	_, resp, err := ts.dial(t, url.Values{"token": {ts.token}})
	req.Error(err)
	req.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGateway_Deleting_A_Participant_Closes_Its_Sessions(t *testing.T) {
	// Given a connected participant and admin
	req := require.New(t)
	ts := newTestServer(t)
	participant := ts.dialParticipant(t, ts.participant)
	admin := ts.dialAdmin(t)

	// When the admin deletes the participant
	req.NoError(ts.directory.Delete(context.Background(), ts.admin, ts.project.ID, ts.participant.ID))

	// Then its websocket is closed by the server
	_ = participant.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := participant.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			req.ErrorAs(err, &closeErr)
			req.Equal(websocket.CloseGoingAway, closeErr.Code)
			req.Equal("participant deleted", closeErr.Text)
			break
		}
	}

	// And the admin stays connected
	send(t, admin, EventJoinChat, "still-here", ChatRef{ChatID: ts.chat.ID})
	req.Equal("still-here", expect(t, admin, EventAck).RequestID)
}
