package api

import (
	"context"
	"net/http"

	mangabridge "github.com/opengovern/manga-bridge"
)

// BookService reads and edits books under /books.
type BookService struct {
	client *mangabridge.Client
}

func (s *BookService) List(ctx context.Context, params BookListParams) ([]Book, *mangabridge.Pagination, error) {
	return list[Book](ctx, s.client, "/books", params.Values())
}

func (s *BookService) Get(ctx context.Context, slug string) (*Book, error) {
	return fetch[Book](ctx, s.client, path("books", slug))
}

func (s *BookService) Create(ctx context.Context, payload CreateBookPayload) (*Book, error) {
	return send[Book](ctx, s.client, http.MethodPost, "/books", payload)
}

func (s *BookService) Update(ctx context.Context, slug string, payload UpdateBookPayload) (*Book, error) {
	return send[Book](ctx, s.client, http.MethodPut, path("books", slug), payload)
}

// Delete removes a book by ID (not slug).
func (s *BookService) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, path("books", id))
	return err
}

// Categories lists the public categories a book can be filed under.
func (s *BookService) Categories(ctx context.Context) ([]Category, error) {
	items, _, err := list[Category](ctx, s.client, "/category", nil)
	return items, err
}
