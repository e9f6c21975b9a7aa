package core

import "context"

// SessionData is the payload returned by the external identity provider
// for a freshly authenticated browser session.
type SessionData struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// IdentityProvider is any service that can exchange an opaque session ID
// for the authenticated user's session data.
type IdentityProvider interface {
	FetchSession(ctx context.Context, sessionID string) (SessionData, error)
}
