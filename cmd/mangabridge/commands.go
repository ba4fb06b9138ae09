package main

import (
	"context"
	"flag"
	"io"
	"strings"
	"time"

	"github.com/opengovern/manga-bridge/api"
)

func subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := subFlags("login")
	email := fs.String("email", a.cfg.Auth.Email, "account email")
	password := fs.String("password", a.cfg.Auth.Password, "account password")
	if err := fs.Parse(args); err != nil || *email == "" {
		return errUsage
	}
	user, err := a.api.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	// The jar dies with the process; print the cookies so they can be fed back
	// through MANGABRIDGE_SESSION_ACCESS_TOKEN / MANGABRIDGE_SESSION_REFRESH_TOKEN.
	out := struct {
		User         *api.User `json:"user"`
		AccessToken  string    `json:"accessToken,omitempty"`
		RefreshToken string    `json:"refreshToken,omitempty"`
	}{User: user}
	if c, ok := a.adapter.Cookie(a.cfg.Session.AccessCookie); ok {
		out.AccessToken = c.Value
	}
	if c, ok := a.adapter.Cookie(a.cfg.Session.RefreshCookie); ok {
		out.RefreshToken = c.Value
	}
	return a.print(out)
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.api.Auth.Logout(ctx); err != nil {
		return err
	}
	return a.print(map[string]bool{"loggedOut": true})
}

func cmdMe(ctx context.Context, a *app, _ []string) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	user, err := a.api.Auth.Me(ctx)
	if err != nil {
		return err
	}
	return a.print(user)
}

// cmdSession prints what the client knows about the session without calling the backend.
func cmdSession(ctx context.Context, a *app, _ []string) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	out := struct {
		BaseURL       string      `json:"baseUrl"`
		LoginURL      string      `json:"loginUrl"`
		HasSession    bool        `json:"hasSession"`
		ExpiresAt     *time.Time  `json:"expiresAt,omitempty"`
		Expired       bool        `json:"expired"`
		RateLimitInfo interface{} `json:"rateLimit,omitempty"`
	}{
		BaseURL:  a.cfg.BaseURL,
		LoginURL: a.client.Config().LoginURL(),
	}
	if tok, err := a.client.SessionToken(a.cfg.Session.AccessCookie); err == nil {
		out.HasSession = true
		if !tok.Expiry.IsZero() {
			exp := tok.Expiry
			out.ExpiresAt = &exp
			out.Expired = !tok.Valid()
		}
	}
	if info := a.client.GetRateLimitInfo(); info != nil {
		out.RateLimitInfo = info
	}
	return a.print(out)
}

func cmdBooks(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		fs := subFlags("books list")
		var p api.BookListParams
		var categories, status, sortBy string
		fs.IntVar(&p.Page, "page", 1, "page number")
		fs.IntVar(&p.PageSize, "page-size", 10, "items per page")
		fs.StringVar(&p.Keyword, "keyword", "", "title or author contains")
		fs.StringVar(&p.Category, "category", "", "category slug")
		fs.StringVar(&categories, "categories", "", "comma separated category slugs")
		fs.StringVar(&status, "status", "", "DRAFT, PUBLISHED, ARCHIVED or PENDING")
		fs.StringVar(&sortBy, "sort", "", "latest, top_rated, most_viewed, price_asc, price_desc or free")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		p.Categories = splitList(categories)
		p.Status = api.BookStatus(strings.ToUpper(status))
		p.Sort = api.BookSort(sortBy)
		books, pagination, err := a.api.Books.List(ctx, p)
		if err != nil {
			return err
		}
		return a.print(page[api.Book]{Items: books, Pagination: pagination})
	case "get":
		if len(args) != 2 {
			return errUsage
		}
		book, err := a.api.Books.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return a.print(book)
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.api.Books.Delete(ctx, args[1]); err != nil {
			return err
		}
		return a.print(map[string]string{"deleted": args[1]})
	}
	return errUsage
}

func cmdChapters(ctx context.Context, a *app, args []string) error {
	if len(args) != 3 || args[0] != "get" {
		return errUsage
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	ch, err := a.api.Chapters.Get(ctx, args[1], args[2])
	if err != nil {
		return err
	}
	return a.print(ch)
}

func cmdCategories(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	switch {
	case args[0] == "list" && len(args) == 1:
		cats, err := a.api.Categories.List(ctx)
		if err != nil {
			return err
		}
		return a.print(cats)
	case args[0] == "featured" && len(args) == 1:
		cats, err := a.api.Categories.Featured(ctx)
		if err != nil {
			return err
		}
		return a.print(cats)
	case args[0] == "get" && len(args) == 2:
		cat, err := a.api.Categories.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return a.print(cat)
	}
	return errUsage
}

func cmdUsers(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		fs := subFlags("users list")
		var p api.UserListParams
		var role, status string
		fs.IntVar(&p.Page, "page", 1, "page number")
		fs.IntVar(&p.Limit, "limit", 10, "items per page")
		fs.StringVar(&p.Search, "search", "", "username or email contains")
		fs.StringVar(&role, "role", "", "USER, ADMIN, PUBLISHER or MODERATOR")
		fs.StringVar(&status, "status", "", "NOT_VERIFY, VERIFIED or BANNED")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		p.Role = api.UserRole(strings.ToUpper(role))
		p.Status = api.AccountStatus(strings.ToUpper(status))
		users, pagination, err := a.api.Users.List(ctx, p)
		if err != nil {
			return err
		}
		return a.print(page[api.User]{Items: users, Pagination: pagination})
	case "get":
		if len(args) != 2 {
			return errUsage
		}
		user, err := a.api.Users.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return a.print(user)
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		if err := a.api.Users.Delete(ctx, args[1]); err != nil {
			return err
		}
		return a.print(map[string]string{"deleted": args[1]})
	}
	return errUsage
}

func cmdOrders(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "list":
		fs := subFlags("orders list")
		var p api.OrderListParams
		var status, method string
		fs.IntVar(&p.Page, "page", 1, "page number")
		fs.IntVar(&p.Limit, "limit", 10, "items per page")
		fs.StringVar(&status, "status", "", "order status")
		fs.StringVar(&method, "paying-method", "", "BANK_TRANSFER, CREDIT_CARD or E_WALLET")
		fs.StringVar(&p.SortBy, "sort-by", "", "createdAt or totalAmount")
		fs.StringVar(&p.SortOrder, "sort-order", "", "asc or desc")
		fs.StringVar(&p.Search, "search", "", "order id, username or email contains")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		p.Status = api.OrderStatus(strings.ToUpper(status))
		p.PayingMethod = api.PayingMethod(strings.ToUpper(method))
		orders, pagination, err := a.api.Orders.List(ctx, p)
		if err != nil {
			return err
		}
		return a.print(page[api.Order]{Items: orders, Pagination: pagination})
	case "get":
		if len(args) != 2 {
			return errUsage
		}
		order, err := a.api.Orders.Get(ctx, args[1])
		if err != nil {
			return err
		}
		return a.print(order)
	case "cancel":
		if len(args) < 2 {
			return errUsage
		}
		fs := subFlags("orders cancel")
		reason := fs.String("reason", "", "cancellation reason")
		if err := fs.Parse(args[2:]); err != nil {
			return errUsage
		}
		order, err := a.api.Orders.Cancel(ctx, args[1], *reason)
		if err != nil {
			return err
		}
		return a.print(order)
	}
	return errUsage
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
