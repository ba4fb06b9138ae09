package mock

import (
	"strconv"
	"time"

	"github.com/opengovern/manga-bridge/api"
)

// Seeded accounts. Their IDs are fixed so tests can address them.
const (
	AdminID       = "u-admin"
	AdminEmail    = "admin@manga.local"
	AdminPassword = "admin123"

	ReaderID       = "u-reader"
	ReaderEmail    = "reader@manga.local"
	ReaderPassword = "reader123"

	PublisherID       = "u-publisher"
	PublisherEmail    = "studio@manga.local"
	PublisherPassword = "studio123"
)

var seedEpoch = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func at(days int) time.Time {
	return seedEpoch.Add(time.Duration(days) * 24 * time.Hour)
}

func ptr[T any](v T) *T {
	return &v
}

func (s *Server) seed() {
	for _, u := range []struct {
		id, email, password, username string
		role                          api.UserRole
		status                        api.AccountStatus
		devices                       int
	}{
		{AdminID, AdminEmail, AdminPassword, "admin", api.RoleAdmin, api.AccountVerified, 1},
		{ReaderID, ReaderEmail, ReaderPassword, "reader", api.RoleUser, api.AccountVerified, 2},
		{PublisherID, PublisherEmail, PublisherPassword, "studio-kaze", api.RolePublisher, api.AccountVerified, 1},
		{"u-banned", "spam@manga.local", "spam123", "spammer", api.RoleUser, api.AccountBanned, 0},
		{"u-new", "new@manga.local", "new123", "newcomer", api.RoleUser, api.AccountNotVerified, 0},
	} {
		created := at(len(s.users))
		s.users[u.id] = &api.User{
			ID:            u.id,
			Role:          u.role,
			Username:      u.username,
			Email:         u.email,
			AccountStatus: u.status,
			ActiveDevices: u.devices,
			CreatedAt:     ptr(created),
			UpdatedAt:     ptr(created),
			Provider:      ptr("local"),
		}
		s.passwords[u.email] = hashPassword(u.password)
	}

	for i, c := range []api.Category{
		{ID: "c-action", Title: "Action", Slug: "action", Description: ptr("Fights, chases and rivals")},
		{ID: "c-romance", Title: "Romance", Slug: "romance", Description: ptr("Love stories")},
		{ID: "c-fantasy", Title: "Fantasy", Slug: "fantasy", Description: ptr("Other worlds")},
	} {
		c := c
		c.CreatedAt = ptr(at(i))
		c.UpdatedAt = ptr(at(i))
		s.categories[c.Slug] = &c
	}
	s.featured = []string{"action", "fantasy"}

	publisher := &api.Publisher{ID: PublisherID, Username: "studio-kaze"}
	books := []api.Book{
		{ID: "b-1", Title: "Sea of Straw Hats", Slug: "sea-of-straw-hats", Author: "K. Oda", View: 9800, LikeCount: 1200,
			IsFree: true, Status: api.BookStatusPublished, CreatedAt: at(10), Policy: "all-ages"},
		{ID: "b-2", Title: "Night Garden", Slug: "night-garden", Author: "M. Aoi", View: 1500, LikeCount: 300,
			Price: 20000, Status: api.BookStatusDraft, CreatedAt: at(20), Policy: "teen"},
		{ID: "b-3", Title: "Iron Saint", Slug: "iron-saint", Author: "R. Kuro", View: 5400, LikeCount: 2100,
			Price: 35000, IsOnSale: true, SalePercent: 10, Status: api.BookStatusPublished, CreatedAt: at(30), Policy: "teen"},
		{ID: "b-4", Title: "Quiet Harbor", Slug: "quiet-harbor", Author: "S. Mina", View: 200, LikeCount: 15,
			Price: 15000, Status: api.BookStatusArchived, CreatedAt: at(5), Policy: "all-ages"},
	}
	bookCategories := map[string][]string{
		"b-1": {"action"},
		"b-2": {"romance"},
		"b-3": {"action", "fantasy"},
		"b-4": {"romance"},
	}
	for _, b := range books {
		b := b
		b.PublisherID = PublisherID
		b.Publisher = publisher
		b.Description = b.Title + " by " + b.Author
		b.UpdatedAt = b.CreatedAt
		b.BookCategories = s.relationsLocked(bookCategories[b.ID])
		s.books[b.Slug] = &b
	}

	for i, title := range []string{"Romance Dawn", "The Man in the Straw Hat"} {
		n := strconv.Itoa(i + 1)
		ch := &api.Chapter{
			ID:            "ch-1-" + n,
			BookID:        "b-1",
			Title:         title,
			Slug:          "chapter-" + n,
			ChapterNumber: i + 1,
			IsFree:        true,
			Status:        api.ChapterStatusPublished,
			Content:       []string{"/pages/b-1/" + n + "/01.webp", "/pages/b-1/" + n + "/02.webp"},
			CreatedAt:     at(11 + i),
			UpdatedAt:     at(11 + i),
		}
		s.chapters["sea-of-straw-hats/"+ch.Slug] = ch
	}

	reader := s.users[ReaderID]
	for _, o := range []api.Order{
		{ID: "o-1", TotalAmount: 35000, Status: api.OrderPending, PayingMethod: api.PayEWallet, CreatedAt: ptr(at(40))},
		{ID: "o-2", TotalAmount: 20000, Status: api.OrderPaid, PayingMethod: api.PayCreditCard, CreatedAt: ptr(at(41)), PaidAt: ptr(at(41))},
		{ID: "o-3", TotalAmount: 50000, Status: api.OrderCompleted, PayingMethod: api.PayBankTransfer, CreatedAt: ptr(at(42)), PaidAt: ptr(at(42))},
	} {
		o := o
		o.UserID = reader.ID
		o.UpdatedAt = o.CreatedAt
		o.User = &api.OrderUser{ID: reader.ID, Username: reader.Username, Email: reader.Email}
		o.OrderItems = []api.OrderItem{{
			ID:            o.ID + "-i1",
			OrdersID:      o.ID,
			BookID:        ptr("b-3"),
			DefaultPrice:  o.TotalAmount,
			DiscountPrice: o.TotalAmount,
			CreatedAt:     o.CreatedAt,
		}}
		s.orders[o.ID] = &o
	}
}

func (s *Server) relationsLocked(slugs []string) []api.BookCategoryRelation {
	var out []api.BookCategoryRelation
	for _, slug := range slugs {
		if c, ok := s.categories[slug]; ok {
			out = append(out, api.BookCategoryRelation{Category: api.BookCategory{ID: c.ID, Title: c.Title}})
		}
	}
	return out
}
