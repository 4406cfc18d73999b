package auth

import (
	"chat-desk/domain"
	"context"
	"net/http"
	"strings"
)

const (
	HeaderAuthorization  = "Authorization"
	HeaderProjectID      = "X-Project-ID"
	HeaderParticipantUID = "X-Participant-UID"

	QueryToken          = "token"
	QueryProjectID      = "projectId"
	QueryParticipantUID = "participantUid"
)

// Credentials is what a caller presents: an admin bearer token, or the
// (project, participant uid) pair of a mobile participant.
type Credentials struct {
	Token          string
	ProjectID      string
	ParticipantUID string
}

func (c Credentials) IsAdmin() bool { return c.Token != "" }

func (c Credentials) IsParticipant() bool {
	return c.ProjectID != "" && c.ParticipantUID != ""
}

// CredentialsFromRequest reads credentials from the handshake. Query
// parameters win over headers since browsers cannot set headers on a
// websocket upgrade.
func CredentialsFromRequest(r *http.Request) Credentials {
	query := r.URL.Query()
	return Credentials{
		Token:          firstNonEmpty(query.Get(QueryToken), BearerToken(r.Header.Get(HeaderAuthorization))),
		ProjectID:      firstNonEmpty(query.Get(QueryProjectID), r.Header.Get(HeaderProjectID)),
		ParticipantUID: firstNonEmpty(query.Get(QueryParticipantUID), r.Header.Get(HeaderParticipantUID)),
	}
}

// BearerToken expects the standard "Bearer <token>" format.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity injects the resolved caller for downstream handlers.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
