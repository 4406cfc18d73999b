package rest

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/services"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type getOrCreateChatRequest struct {
	ParticipantID string `json:"participantId"`
}

type messagesPage struct {
	Messages   []domain.Message `json:"messages"`
	NextCursor *string          `json:"nextCursor"`
}

type countResponse struct {
	Count int `json:"count"`
}

// caller is set by identify on every /api route that needs it.
func caller(r *http.Request) domain.Identity {
	identity, _ := auth.IdentityFrom(r.Context())
	return identity
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeBody(r, a.maxBodyBytes, &req); err != nil {
		writeError(a.log, w, r, err)
		return
	}
	session, err := a.svc.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeBody(r, a.maxBodyBytes, &req); err != nil {
		writeError(a.log, w, r, err)
		return
	}
	session, err := a.svc.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProjectRequest
	if err := decodeBody(r, a.maxBodyBytes, &req); err != nil {
		writeError(a.log, w, r, err)
		return
	}
	project, err := a.svc.Projects.CreateProject(r.Context(), caller(r), req)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.svc.Projects.ListProjects(r.Context(), caller(r))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(projects))
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := a.svc.Projects.GetProject(r.Context(), caller(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (a *API) createParticipant(w http.ResponseWriter, r *http.Request) {
	var req services.CreateParticipantRequest
	if err := decodeBody(r, a.maxBodyBytes, &req); err != nil {
		writeError(a.log, w, r, err)
		return
	}
	participant, err := a.svc.Participants.Create(r.Context(), caller(r), chi.URLParam(r, "projectID"), req)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

func (a *API) listParticipants(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	participants, err := a.svc.Participants.List(r.Context(), caller(r), chi.URLParam(r, "projectID"), page)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(participants))
}

func (a *API) countParticipants(w http.ResponseWriter, r *http.Request) {
	count, err := a.svc.Participants.Count(r.Context(), caller(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

func (a *API) getParticipant(w http.ResponseWriter, r *http.Request) {
	participant, err := a.svc.Participants.Get(r.Context(), caller(r),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "participantID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (a *API) getParticipantByUID(w http.ResponseWriter, r *http.Request) {
	participant, err := a.svc.Participants.GetByUID(r.Context(), caller(r),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (a *API) deleteParticipant(w http.ResponseWriter, r *http.Request) {
	err := a.svc.Participants.Delete(r.Context(), caller(r),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "participantID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) getOrCreateChat(w http.ResponseWriter, r *http.Request) {
	var req getOrCreateChatRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, a.maxBodyBytes, &req); err != nil {
			writeError(a.log, w, r, err)
			return
		}
	}
	chat, err := a.svc.Chats.GetOrCreateChat(r.Context(), caller(r), chi.URLParam(r, "projectID"), req.ParticipantID)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (a *API) listProjectChats(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	chats, err := a.svc.Chats.ListForProject(r.Context(), caller(r), chi.URLParam(r, "projectID"), page)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(chats))
}

// listChats returns the admin's chats with optional filters, or the
// participant's own chats.
func (a *API) listChats(w http.ResponseWriter, r *http.Request) {
	var (
		chats []domain.Chat
		err   error
	)
	switch id := caller(r).(type) {
	case domain.AdminCaller:
		var filter domain.ChatFilter
		if filter, err = filterFrom(r); err == nil {
			chats, err = a.svc.Chats.ListForAdmin(r.Context(), id, filter)
		}
	case domain.ParticipantCaller:
		chats, err = a.svc.Chats.ListForParticipant(r.Context(), id)
	default:
		err = errors.ErrForbidden
	}
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(chats))
}

func (a *API) getChat(w http.ResponseWriter, r *http.Request) {
	chat, err := a.svc.Chats.Get(r.Context(), caller(r), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (a *API) deactivateChat(w http.ResponseWriter, r *http.Request) {
	chat, err := a.svc.Chats.Deactivate(r.Context(), caller(r), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (a *API) markRead(w http.ResponseWriter, r *http.Request) {
	chat, err := a.svc.Chats.MarkRead(r.Context(), caller(r), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (a *API) presence(w http.ResponseWriter, r *http.Request) {
	status, err := a.svc.Chats.Presence(r.Context(), caller(r), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}
	messages, next, err := a.svc.Messages.List(r.Context(), caller(r), chi.URLParam(r, "chatID"), cursor, limit)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesPage{Messages: nonNil(messages), NextCursor: next})
}

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request) {
	var draft services.Draft
	if err := decodeBody(r, a.maxBodyBytes, &draft); err != nil {
		writeError(a.log, w, r, err)
		return
	}
	msg, err := a.svc.Messages.Send(r.Context(), caller(r), chi.URLParam(r, "chatID"), draft)
	if err != nil {
		writeError(a.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// pageFrom reads offset/limit, or page/limit with 1-based pages.
func pageFrom(r *http.Request) (domain.Page, error) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return domain.Page{}, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return domain.Page{}, err
	}
	pageNumber, err := queryInt(r, "page", 0)
	if err != nil {
		return domain.Page{}, err
	}
	if pageNumber > 0 && limit > 0 {
		offset = (pageNumber - 1) * limit
	}
	return domain.Page{Offset: offset, Limit: limit}, nil
}

func filterFrom(r *http.Request) (domain.ChatFilter, error) {
	page, err := pageFrom(r)
	if err != nil {
		return domain.ChatFilter{}, err
	}
	active, err := queryBool(r, "active")
	if err != nil {
		return domain.ChatFilter{}, err
	}
	unread, err := queryBool(r, "unread")
	if err != nil {
		return domain.ChatFilter{}, err
	}
	return domain.ChatFilter{
		ProjectID:  r.URL.Query().Get("projectId"),
		Active:     active,
		UnreadOnly: unread != nil && *unread,
		Page:       page,
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
