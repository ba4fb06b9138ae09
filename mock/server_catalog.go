package mock

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mangabridge "github.com/opengovern/manga-bridge"
	"github.com/opengovern/manga-bridge/api"
)

func (s *Server) listBooks(c echo.Context) error {
	keyword := strings.ToLower(c.QueryParam("keyword"))
	status := api.BookStatus(c.QueryParam("status"))
	sortBy := api.BookSort(c.QueryParam("sort"))

	wanted := c.QueryParams()["categories[]"]
	wanted = append(wanted, c.QueryParams()["categories"]...)
	if one := c.QueryParam("category"); one != "" {
		wanted = append(wanted, one)
	}

	s.mu.Lock()
	categoryIDs := make(map[string]bool)
	for _, slug := range wanted {
		if cat, ok := s.categories[slug]; ok {
			categoryIDs[cat.ID] = true
		} else {
			categoryIDs["missing:"+slug] = true
		}
	}
	books := make([]api.Book, 0, len(s.books))
	for _, b := range s.books {
		if keyword != "" && !strings.Contains(strings.ToLower(b.Title), keyword) &&
			!strings.Contains(strings.ToLower(b.Author), keyword) {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		if sortBy == api.SortFree && !b.IsFree {
			continue
		}
		if len(categoryIDs) > 0 && !inCategories(b, categoryIDs) {
			continue
		}
		books = append(books, *b)
	}
	s.mu.Unlock()

	sortBooks(books, sortBy)
	page, meta := paginate(books, queryInt(c, "page", 1), queryInt(c, "pageSize", 10))
	return respond(c, http.StatusOK, "books fetched", page, meta)
}

func inCategories(b *api.Book, ids map[string]bool) bool {
	for _, rel := range b.BookCategories {
		if ids[rel.Category.ID] {
			return true
		}
	}
	return false
}

func sortBooks(books []api.Book, by api.BookSort) {
	less := func(i, j int) bool { return books[i].CreatedAt.After(books[j].CreatedAt) }
	switch by {
	case api.SortTopRated:
		less = func(i, j int) bool { return books[i].LikeCount > books[j].LikeCount }
	case api.SortMostViewed:
		less = func(i, j int) bool { return books[i].View > books[j].View }
	case api.SortPriceAsc:
		less = func(i, j int) bool { return books[i].Price < books[j].Price }
	case api.SortPriceDesc:
		less = func(i, j int) bool { return books[i].Price > books[j].Price }
	}
	sort.SliceStable(books, less)
}

func (s *Server) getBook(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[pathParam(c, "slug")]
	if !ok {
		return fail(http.StatusNotFound, "book not found")
	}
	return respond(c, http.StatusOK, "book fetched", *b, nil)
}

func (s *Server) createBook(c echo.Context) error {
	var payload api.CreateBookPayload
	if err := c.Bind(&payload); err != nil {
		return fail(http.StatusBadRequest, "invalid book payload")
	}
	if strings.TrimSpace(payload.Title) == "" {
		return fail(http.StatusBadRequest, "title is required")
	}
	user := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	slug := slugify(payload.Title)
	if _, exists := s.books[slug]; exists {
		return fail(http.StatusConflict, "a book with this title already exists")
	}
	now := s.now()
	status := payload.Status
	if status == "" {
		status = api.BookStatusDraft
	}
	b := &api.Book{
		ID:             uuid.NewString(),
		PublisherID:    user.ID,
		Title:          payload.Title,
		Slug:           slug,
		Thumbnail:      payload.Thumbnail,
		Description:    payload.Description,
		Author:         payload.Author,
		Policy:         payload.Policy,
		IsFree:         payload.IsFree,
		Status:         status,
		Price:          payload.Price,
		IsOnSale:       payload.IsOnSale,
		SalePercent:    payload.SalePercent,
		CreatedAt:      now,
		UpdatedAt:      now,
		BookCategories: s.relationsByIDLocked(payload.CategoryIDs),
		Publisher:      &api.Publisher{ID: user.ID, Username: user.Username},
	}
	s.books[slug] = b
	return respond(c, http.StatusCreated, "book created", *b, nil)
}

func (s *Server) updateBook(c echo.Context) error {
	var payload api.UpdateBookPayload
	if err := c.Bind(&payload); err != nil {
		return fail(http.StatusBadRequest, "invalid book payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[pathParam(c, "slug")]
	if !ok {
		return fail(http.StatusNotFound, "book not found")
	}
	if payload.Title != nil {
		b.Title = *payload.Title
	}
	if payload.Description != nil {
		b.Description = *payload.Description
	}
	if payload.Author != nil {
		b.Author = *payload.Author
	}
	if payload.Policy != nil {
		b.Policy = *payload.Policy
	}
	if payload.Thumbnail != nil {
		b.Thumbnail = payload.Thumbnail
	}
	if payload.IsFree != nil {
		b.IsFree = *payload.IsFree
	}
	if payload.Status != nil {
		b.Status = *payload.Status
	}
	if payload.Price != nil {
		b.Price = *payload.Price
	}
	if payload.IsOnSale != nil {
		b.IsOnSale = *payload.IsOnSale
	}
	if payload.SalePercent != nil {
		b.SalePercent = *payload.SalePercent
	}
	if payload.CategoryIDs != nil {
		b.BookCategories = s.relationsByIDLocked(payload.CategoryIDs)
	}
	b.UpdatedAt = s.now()
	return respond(c, http.StatusOK, "book updated", *b, nil)
}

func (s *Server) deleteBook(c echo.Context) error {
	id := pathParam(c, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()
	for slug, b := range s.books {
		if b.ID == id {
			delete(s.books, slug)
			return respond(c, http.StatusOK, "book deleted", nil, nil)
		}
	}
	return fail(http.StatusNotFound, "book not found")
}

func (s *Server) listPublicCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return respond(c, http.StatusOK, "categories fetched", s.sortedCategoriesLocked(), nil)
}

func (s *Server) listFeaturedCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Category, 0, len(s.featured))
	for _, slug := range s.featured {
		if cat, ok := s.categories[slug]; ok {
			out = append(out, *cat)
		}
	}
	return respond(c, http.StatusOK, "featured categories fetched", out, nil)
}

func (s *Server) listCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sortedCategoriesLocked()
	return respond(c, http.StatusOK, "categories fetched", all, &mangabridge.Pagination{
		Page: 1, Limit: len(all), TotalPage: 1, TotalItems: ptr(len(all)),
	})
}

func (s *Server) getCategory(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.categories[pathParam(c, "slug")]
	if !ok {
		return fail(http.StatusNotFound, "category not found")
	}
	return respond(c, http.StatusOK, "category fetched", *cat, nil)
}

func (s *Server) updateCategory(c echo.Context) error {
	title := c.FormValue("title")
	description := c.FormValue("description")
	thumbnail := c.FormValue("thumbnail")
	if fh, err := c.FormFile("thumbnail"); err == nil {
		thumbnail = "/uploads/categories/" + fh.Filename
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.categories[pathParam(c, "slug")]
	if !ok {
		return fail(http.StatusNotFound, "category not found")
	}
	if title != "" {
		cat.Title = title
	}
	if description != "" {
		cat.Description = ptr(description)
	}
	if thumbnail != "" {
		cat.Thumbnail = ptr(thumbnail)
	}
	cat.UpdatedAt = ptr(s.now())
	return respond(c, http.StatusOK, "category updated", *cat, nil)
}

func (s *Server) getChapter(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chapters[pathParam(c, "book")+"/"+pathParam(c, "chapter")]
	if !ok {
		return fail(http.StatusNotFound, "chapter not found")
	}
	return respond(c, http.StatusOK, "chapter fetched", *ch, nil)
}

func (s *Server) updateChapter(c echo.Context) error {
	var payload api.UpdateChapterPayload
	if err := c.Bind(&payload); err != nil {
		return fail(http.StatusBadRequest, "invalid chapter payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chapters[pathParam(c, "book")+"/"+pathParam(c, "chapter")]
	if !ok {
		return fail(http.StatusNotFound, "chapter not found")
	}
	if payload.Title != nil {
		ch.Title = *payload.Title
	}
	if payload.ChapterNumber != nil {
		ch.ChapterNumber = *payload.ChapterNumber
	}
	if payload.IsFree != nil {
		ch.IsFree = *payload.IsFree
	}
	if payload.Price != nil {
		ch.Price = *payload.Price
	}
	if payload.IsOnSale != nil {
		ch.IsOnSale = *payload.IsOnSale
	}
	if payload.SalePercent != nil {
		ch.SalePercent = *payload.SalePercent
	}
	if payload.Status != nil {
		ch.Status = *payload.Status
	}
	if payload.Content != nil {
		ch.Content = append([]string(nil), payload.Content...)
	}
	ch.UpdatedAt = s.now()
	return respond(c, http.StatusOK, "chapter updated", *ch, nil)
}

func (s *Server) sortedCategoriesLocked() []api.Category {
	out := make([]api.Category, 0, len(s.categories))
	for _, cat := range s.categories {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func (s *Server) relationsByIDLocked(ids []string) []api.BookCategoryRelation {
	var out []api.BookCategoryRelation
	for _, id := range ids {
		for _, cat := range s.categories {
			if cat.ID == id {
				out = append(out, api.BookCategoryRelation{Category: api.BookCategory{ID: cat.ID, Title: cat.Title}})
			}
		}
	}
	return out
}

func paginate[T any](items []T, page, limit int) ([]T, *mangabridge.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], &mangabridge.Pagination{
		Page:       page,
		Limit:      limit,
		TotalPage:  (total + limit - 1) / limit,
		TotalItems: ptr(total),
	}
}

func queryInt(c echo.Context, key string, def int) int {
	if n, err := strconv.Atoi(c.QueryParam(key)); err == nil && n > 0 {
		return n
	}
	return def
}

func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
