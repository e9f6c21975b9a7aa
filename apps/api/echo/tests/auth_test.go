package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/shikshaconnect/shiksha/apps/api/echo"
	"github.com/shikshaconnect/shiksha/core"
)

func Test_AuthAPI_sessionData(t *testing.T) {
	app := setup(t)

	sessions["sess-1"] = core.SessionData{
		ID:           "ext-1",
		Email:        "new@test.in",
		Name:         "New User",
		Picture:      "https://pics.test/new.png",
		SessionToken: "tok-new",
	}

	tests := []httpTest{
		{
			name:     "missing session ID is a 400",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "session ID required"}),
		},
		{
			name:     "unknown session ID is a 401",
			token:    "sess-unknown",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errInvalidSession),
		},
		{
			name:     "first callback creates the user with the default role",
			token:    "sess-1",
			wantCode: http.StatusOK,
			wantData: marshallObj(t, SessionResponse{
				ID:           "ext-1",
				Email:        "new@test.in",
				Name:         "New User",
				Picture:      "https://pics.test/new.png",
				SessionToken: "tok-new",
				Role:         "teacher",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/api/auth/session-data")
			if tt.token != "" {
				req.Header.Set("X-Session-ID", tt.token)
			}
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the minted session token now authenticates API calls
	usr, err := usrRepo.GetUserBySessionToken(context.Background(), "tok-new")
	if err != nil {
		t.Fatalf("GetUserBySessionToken() failed: %v", err)
	}
	assert.Equal(t, "new@test.in", usr.Email)
}

func Test_AuthAPI_sessionData_existingUserKeepsRole(t *testing.T) {
	app := setup(t)

	createAdmin(t, "tok-old")
	sessions["sess-2"] = core.SessionData{
		ID:           "ext-2",
		Email:        "admin@test.in",
		Name:         "Admin",
		SessionToken: "tok-2",
	}

	req, rec := newRequest(http.MethodGet, "/api/auth/session-data")
	req.Header.Set("X-Session-ID", "sess-2")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp SessionResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "administrator", resp.Role)

	// the new token was appended; the old one still works
	ctx := context.Background()
	if _, err := usrRepo.GetUserBySessionToken(ctx, "tok-2"); err != nil {
		t.Errorf("GetUserBySessionToken(tok-2) failed: %v", err)
	}
	if _, err := usrRepo.GetUserBySessionToken(ctx, "tok-old"); err != nil {
		t.Errorf("GetUserBySessionToken(tok-old) failed: %v", err)
	}
}

func Test_AuthAPI_logout(t *testing.T) {
	app := setup(t)
	createTeacher(t, "tok-1")
	wantMsg := marshallObj(t, map[string]string{"message": "Logged out successfully"})

	t.Run("requires authentication", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/logout")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)}, rec)
	})

	t.Run("bearer-only logout leaves the token valid", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", "tok-1")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: wantMsg}, rec)

		if _, err := usrRepo.GetUserBySessionToken(context.Background(), "tok-1"); err != nil {
			t.Errorf("GetUserBySessionToken(tok-1) failed: %v", err)
		}
	})

	t.Run("cookie logout invalidates the session", func(t *testing.T) {
		req, rec := newCookieRequest(http.MethodPost, "/api/auth/logout", "tok-1")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: wantMsg}, rec)

		req, rec = newCookieRequest(http.MethodPost, "/api/auth/logout", "tok-1")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidSession)}, rec)
	})
}

func Test_API_authMiddleware(t *testing.T) {
	app := setup(t)
	createTeacher(t, "tok-1")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/students"},
		{http.MethodPost, "/api/students"},
		{http.MethodGet, "/api/classes"},
		{http.MethodPost, "/api/attendance/mark"},
		{http.MethodGet, "/api/attendance?date=2024-01-01"},
		{http.MethodPost, "/api/reports/attendance"},
		{http.MethodPost, "/api/analytics/insights"},
		{http.MethodGet, "/api/analytics/dashboard"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			// no credentials
			req, rec := newRequest(p.method, p.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errNotAuthenticated)}, rec)

			// unknown token
			req, rec = newAuthRequest(p.method, p.path, "tok-bad")
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errInvalidSession)}, rec)
		})
	}
}
