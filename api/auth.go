package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	mangabridge "github.com/opengovern/manga-bridge"
)

const (
	loginEndpoint  = "/auth/login"
	logoutEndpoint = "/auth/logout"
)

// AuthService signs in and out and manages the session cookies.
type AuthService struct {
	client *mangabridge.Client
}

// Login exchanges credentials for session cookies. A 401 here is reported as is;
// there is no session to refresh yet.
func (s *AuthService) Login(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(LoginPayload{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal login payload: %w", err)
	}
	resp, err := s.client.RequestOnce(ctx, &mangabridge.NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: loginEndpoint,
		Body:     body,
	})
	if err != nil {
		return nil, err
	}
	env, err := mangabridge.DecodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	return decode[User](env)
}

// Me returns the signed-in user, refreshing the session once if needed.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	env, err := s.client.FetchCurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return decode[User](env)
}

// Refresh renews the session cookies explicitly.
func (s *AuthService) Refresh(ctx context.Context) error {
	_, err := s.client.RequestOnce(ctx, &mangabridge.NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: s.client.Config().RefreshEndpoint,
	})
	return err
}

func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.client.RequestOnce(ctx, &mangabridge.NormalizedRequest{
		Method:   http.MethodPost,
		Endpoint: logoutEndpoint,
	})
	return err
}
