package api

import (
	"context"
	"net/http"

	mangabridge "github.com/opengovern/manga-bridge"
)

// CategoryService manages categories, including the featured list and thumbnails.
type CategoryService struct {
	client *mangabridge.Client
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	items, _, err := list[Category](ctx, s.client, "/admin/category", nil)
	return items, err
}

func (s *CategoryService) Featured(ctx context.Context) ([]Category, error) {
	items, _, err := list[Category](ctx, s.client, "/category/feature", nil)
	return items, err
}

func (s *CategoryService) Get(ctx context.Context, slug string) (*Category, error) {
	return fetch[Category](ctx, s.client, path("admin", "category", slug))
}

// Update sends the changed fields as multipart/form-data; empty fields are omitted.
func (s *CategoryService) Update(ctx context.Context, slug string, payload UpdateCategoryPayload) (*Category, error) {
	form := newMultipartForm()
	form.field("title", payload.Title)
	form.field("description", payload.Description)
	if payload.Thumbnail != nil {
		form.file("thumbnail", payload.Thumbnail)
	} else {
		form.field("thumbnail", payload.ThumbnailURL)
	}
	return sendForm[Category](ctx, s.client, http.MethodPut, path("admin", "category", slug), form)
}
