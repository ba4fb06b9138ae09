package api

import (
	"context"
	"net/http"

	mangabridge "github.com/opengovern/manga-bridge"
)

// UserService is the admin view of accounts under /admin/user.
type UserService struct {
	client *mangabridge.Client
}

func (s *UserService) List(ctx context.Context, params UserListParams) ([]User, *mangabridge.Pagination, error) {
	return list[User](ctx, s.client, "/admin/user", params.Values())
}

func (s *UserService) Get(ctx context.Context, id string) (*User, error) {
	return fetch[User](ctx, s.client, path("admin", "user", id))
}

func (s *UserService) Update(ctx context.Context, id string, payload UpdateUserPayload) (*User, error) {
	form := newMultipartForm()
	form.field("username", payload.Username)
	if payload.Avatar != nil {
		form.file("avatar", payload.Avatar)
	}
	return sendForm[User](ctx, s.client, http.MethodPut, path("admin", "user", id), form)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, path("admin", "user", id))
	return err
}
