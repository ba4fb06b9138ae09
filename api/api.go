// Package api exposes the admin backend resources (books, chapters, categories,
// users, orders) as typed calls on top of a mangabridge.Client. Every call goes
// through the client's refresh-and-retry cycle except login and logout.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	mangabridge "github.com/opengovern/manga-bridge"
)

// API groups the resource services sharing one client.
type API struct {
	Auth       *AuthService
	Books      *BookService
	Chapters   *ChapterService
	Categories *CategoryService
	Users      *UserService
	Orders     *OrderService
}

// New builds every service on top of client.
func New(client *mangabridge.Client) *API {
	return &API{
		Auth:       &AuthService{client: client},
		Books:      &BookService{client: client},
		Chapters:   &ChapterService{client: client},
		Categories: &CategoryService{client: client},
		Users:      &UserService{client: client},
		Orders:     &OrderService{client: client},
	}
}

// fetch GETs endpoint and decodes the envelope data into a T.
func fetch[T any](ctx context.Context, c *mangabridge.Client, endpoint string) (*T, error) {
	env, err := c.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decode[T](env)
}

// list GETs a paginated collection.
func list[T any](ctx context.Context, c *mangabridge.Client, endpoint string, query url.Values) ([]T, *mangabridge.Pagination, error) {
	env, err := c.Get(ctx, endpoint, query)
	if err != nil {
		return nil, nil, err
	}
	var items []T
	if err := env.DecodeData(&items); err != nil {
		return nil, nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	return items, env.Pagination, nil
}

func decode[T any](env *mangabridge.CustomResponse) (*T, error) {
	out := new(T)
	if err := env.DecodeData(out); err != nil {
		return nil, err
	}
	return out, nil
}

func send[T any](ctx context.Context, c *mangabridge.Client, method, endpoint string, body interface{}) (*T, error) {
	var (
		env *mangabridge.CustomResponse
		err error
	)
	switch method {
	case http.MethodPost:
		env, err = c.Post(ctx, endpoint, body)
	case http.MethodPut:
		env, err = c.Put(ctx, endpoint, body)
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}
	if err != nil {
		return nil, err
	}
	return decode[T](env)
}

// path escapes each segment; the adapter sends the result as is.
func path(parts ...string) string {
	out := ""
	for _, p := range parts {
		out += "/" + url.PathEscape(p)
	}
	return out
}
