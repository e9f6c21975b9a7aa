package identitysvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
)

var ErrInvalidSession = errors.New("invalid session")

type service struct {
	conf   *core.Config
	client *http.Client
}

var _ core.IdentityProvider = (*service)(nil)

// NewService returns an IdentityProvider backed by the external auth
// provider's session-data endpoint.
func NewService(conf *core.Config) core.IdentityProvider {
	return &service{
		conf:   conf,
		client: &http.Client{Timeout: conf.Auth.Timeout},
	}
}

func (svc *service) FetchSession(ctx context.Context, sessionID string) (core.SessionData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.conf.Auth.SessionDataURL, nil)
	if err != nil {
		return core.SessionData{}, errors.Wrap(err, "building session-data request")
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := svc.client.Do(req)
	if err != nil {
		return core.SessionData{}, errors.Wrap(err, "fetching session data")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return core.SessionData{}, ErrInvalidSession
	}

	var data core.SessionData
	if err = json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return core.SessionData{}, errors.Wrap(err, "decoding session data")
	}
	return data, nil
}

type serviceMock struct {
	sessions map[string]core.SessionData
}

// NewServiceMock resolves canned session data keyed by session ID; for tests.
func NewServiceMock(sessions map[string]core.SessionData) core.IdentityProvider {
	return &serviceMock{sessions: sessions}
}

func (svc *serviceMock) FetchSession(_ context.Context, sessionID string) (core.SessionData, error) {
	if data, ok := svc.sessions[sessionID]; ok {
		return data, nil
	}
	return core.SessionData{}, ErrInvalidSession
}
