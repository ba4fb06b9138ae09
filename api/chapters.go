package api

import (
	"context"
	"net/http"

	mangabridge "github.com/opengovern/manga-bridge"
)

// ChapterService reads and edits chapters, addressed by book and chapter slug.
type ChapterService struct {
	client *mangabridge.Client
}

func (s *ChapterService) Get(ctx context.Context, bookSlug, chapterSlug string) (*Chapter, error) {
	return fetch[Chapter](ctx, s.client, path("chapters", bookSlug, chapterSlug))
}

func (s *ChapterService) Update(ctx context.Context, bookSlug, chapterSlug string, payload UpdateChapterPayload) (*Chapter, error) {
	return send[Chapter](ctx, s.client, http.MethodPut, path("chapters", bookSlug, chapterSlug), payload)
}
