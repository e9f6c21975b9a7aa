package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core/user"
)

const (
	sessionCookieName = "session_token"
	sessionIDHeader   = "X-Session-ID"
	contextUserKey    = "user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// authMiddleware resolves the caller from the opaque session token, checking
// the session cookie first, then the Authorization bearer header. It rejects
// before any core logic runs.
func authMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := getSessionToken(ctx)
			if token == "" {
				return errUnauthorized
			}

			usr, err := svc.GetBySessionToken(ctx.Request().Context(), token)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errInvalidSession
				}
				return errors.Wrap(err, "finding user by session token")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getSessionToken(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}

// Handlers

type authApi struct {
	deps *Deps
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, deps *Deps) {
	api := authApi{deps: deps}

	ag := g.Group("/auth")
	ag.GET("/session-data", api.sessionData)
	ag.POST("/logout", api.logout, auth)
}

// SessionResponse is returned on a successful external-auth callback.
type SessionResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
	Role         string `json:"role"`
}

// sessionData exchanges the provider session ID for session data and creates
// or updates the local user.
func (api *authApi) sessionData(ctx echo.Context) error {
	sessionID := ctx.Request().Header.Get(sessionIDHeader)
	if sessionID == "" {
		return errSessionIDRequired
	}

	data, err := api.deps.Identity.FetchSession(ctx.Request().Context(), sessionID)
	if err != nil {
		return errInvalidSession
	}

	usr, err := api.deps.UserSvc.StartSession(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "starting session")
	}

	return ctx.JSON(http.StatusOK, SessionResponse{
		ID:           data.ID,
		Email:        data.Email,
		Name:         data.Name,
		Picture:      data.Picture,
		SessionToken: data.SessionToken,
		Role:         usr.Role,
	})
}

func (api *authApi) logout(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// only cookie-held tokens are invalidated
	if cookie, cErr := ctx.Cookie(sessionCookieName); cErr == nil && cookie.Value != "" {
		if err = api.deps.UserSvc.EndSession(ctx.Request().Context(), usr.ID, cookie.Value); err != nil {
			return errors.Wrap(err, "ending session")
		}
	}

	return ctx.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}
