package api

import (
	"io"
	"net/url"
	"strconv"
	"time"
)

type BookStatus string

const (
	BookStatusDraft     BookStatus = "DRAFT"
	BookStatusPublished BookStatus = "PUBLISHED"
	BookStatusArchived  BookStatus = "ARCHIVED"
	BookStatusPending   BookStatus = "PENDING"
)

type ChapterStatus string

const (
	ChapterStatusDraft     ChapterStatus = "DRAFT"
	ChapterStatusPublished ChapterStatus = "PUBLISHED"
	ChapterStatusArchived  ChapterStatus = "ARCHIVED"
	ChapterStatusPending   ChapterStatus = "PENDING"
)

type BookSort string

const (
	SortLatest     BookSort = "latest"
	SortTopRated   BookSort = "top_rated"
	SortMostViewed BookSort = "most_viewed"
	SortPriceAsc   BookSort = "price_asc"
	SortPriceDesc  BookSort = "price_desc"
	SortFree       BookSort = "free"
)

type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleAdmin     UserRole = "ADMIN"
	RolePublisher UserRole = "PUBLISHER"
	RoleModerator UserRole = "MODERATOR"
)

type AccountStatus string

const (
	AccountNotVerified AccountStatus = "NOT_VERIFY"
	AccountVerified    AccountStatus = "VERIFIED"
	AccountBanned      AccountStatus = "BANNED"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderRefunded  OrderStatus = "REFUNDED"
	OrderFailed    OrderStatus = "FAILED"
	OrderPaid      OrderStatus = "PAID"
	OrderError     OrderStatus = "ERROR"
)

type PayingMethod string

const (
	PayBankTransfer PayingMethod = "BANK_TRANSFER"
	PayCreditCard   PayingMethod = "CREDIT_CARD"
	PayEWallet      PayingMethod = "E_WALLET"
)

type BookCategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type BookCategoryRelation struct {
	Category BookCategory `json:"category"`
}

type Publisher struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
}

type Book struct {
	ID             string                 `json:"id"`
	PublisherID    string                 `json:"publisherId"`
	Title          string                 `json:"title"`
	Slug           string                 `json:"slug"`
	Thumbnail      *string                `json:"thumbnail"`
	View           int                    `json:"view"`
	LikeCount      int                    `json:"likeCount"`
	Description    string                 `json:"description"`
	Author         string                 `json:"author"`
	Policy         string                 `json:"policy"`
	IsFree         bool                   `json:"isFree"`
	Status         BookStatus             `json:"status"`
	Price          float64                `json:"price"`
	IsOnSale       bool                   `json:"isOnSale"`
	SalePercent    float64                `json:"salePercent"`
	UpdatedAt      time.Time              `json:"updatedAt"`
	CreatedAt      time.Time              `json:"createdAt"`
	DeletedAt      *time.Time             `json:"deletedAt"`
	BookCategories []BookCategoryRelation `json:"bookCategories,omitempty"`
	Publisher      *Publisher             `json:"publisher,omitempty"`
}

// BookListParams filters GET /books. Zero fields are left out of the query.
type BookListParams struct {
	Page       int
	PageSize   int
	Keyword    string
	Category   string
	Categories []string
	Status     BookStatus
	Sort       BookSort
}

// Values encodes the params the way the dashboard's HTTP client does, arrays as key[].
func (p BookListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "pageSize", p.PageSize)
	setString(v, "keyword", p.Keyword)
	setString(v, "category", p.Category)
	for _, c := range p.Categories {
		v.Add("categories[]", c)
	}
	setString(v, "status", string(p.Status))
	setString(v, "sort", string(p.Sort))
	return v
}

type CreateBookPayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Author      string     `json:"author,omitempty"`
	Policy      string     `json:"policy,omitempty"`
	Thumbnail   *string    `json:"thumbnail,omitempty"`
	IsFree      bool       `json:"isFree"`
	Status      BookStatus `json:"status,omitempty"`
	Price       float64    `json:"price"`
	IsOnSale    bool       `json:"isOnSale"`
	SalePercent float64    `json:"salePercent"`
	CategoryIDs []string   `json:"categoryIds,omitempty"`
}

type UpdateBookPayload struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Author      *string     `json:"author,omitempty"`
	Policy      *string     `json:"policy,omitempty"`
	Thumbnail   *string     `json:"thumbnail,omitempty"`
	IsFree      *bool       `json:"isFree,omitempty"`
	Status      *BookStatus `json:"status,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	IsOnSale    *bool       `json:"isOnSale,omitempty"`
	SalePercent *float64    `json:"salePercent,omitempty"`
	CategoryIDs []string    `json:"categoryIds,omitempty"`
}

type Chapter struct {
	ID            string        `json:"id"`
	BookID        string        `json:"bookId"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	ChapterNumber int           `json:"chapterNumber"`
	IsFree        bool          `json:"isFree"`
	Price         float64       `json:"price"`
	IsOnSale      bool          `json:"isOnSale"`
	SalePercent   float64       `json:"salePercent"`
	Status        ChapterStatus `json:"status"`
	Content       []string      `json:"content"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type UpdateChapterPayload struct {
	Title         *string        `json:"title,omitempty"`
	ChapterNumber *int           `json:"chapterNumber,omitempty"`
	IsFree        *bool          `json:"isFree,omitempty"`
	Price         *float64       `json:"price,omitempty"`
	IsOnSale      *bool          `json:"isOnSale,omitempty"`
	SalePercent   *float64       `json:"salePercent,omitempty"`
	Status        *ChapterStatus `json:"status,omitempty"`
	Content       []string       `json:"content,omitempty"`
}

type Category struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Thumbnail   *string    `json:"thumbnail,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Upload is a file part of a multipart form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UpdateCategoryPayload is sent as multipart/form-data. Thumbnail wins over ThumbnailURL.
type UpdateCategoryPayload struct {
	Title        string
	Description  string
	ThumbnailURL string
	Thumbnail    *Upload
}

type User struct {
	ID            string        `json:"id"`
	Role          UserRole      `json:"role"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	Avatar        *string       `json:"avatar,omitempty"`
	AccountStatus AccountStatus `json:"accountStatus"`
	ActiveDevices int           `json:"activeDevices"`
	CreatedAt     *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time    `json:"updatedAt,omitempty"`
	DeletedAt     *time.Time    `json:"deletedAt,omitempty"`
	GoogleID      *string       `json:"googleID,omitempty"`
	FacebookID    *string       `json:"facebookID,omitempty"`
	Provider      *string       `json:"provider,omitempty"`
}

type UserListParams struct {
	Page   int
	Limit  int
	Search string
	Role   UserRole
	Status AccountStatus
}

func (p UserListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
	setString(v, "search", p.Search)
	setString(v, "role", string(p.Role))
	setString(v, "status", string(p.Status))
	return v
}

// UpdateUserPayload is sent as multipart/form-data.
type UpdateUserPayload struct {
	Username string
	Avatar   *Upload
}

type OrderItem struct {
	ID            string     `json:"id"`
	OrdersID      string     `json:"ordersId"`
	BookID        *string    `json:"bookId,omitempty"`
	ChapterID     *string    `json:"chapterId,omitempty"`
	DefaultPrice  float64    `json:"defaultPrice"`
	DiscountPrice float64    `json:"discountPrice"`
	IsRead        bool       `json:"isRead"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

type OrderUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Order struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	TotalAmount  float64      `json:"totalAmount"`
	Status       OrderStatus  `json:"status"`
	PayingMethod PayingMethod `json:"payingMethod"`
	PaidAt       *time.Time   `json:"paidAt,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
	OrderItems   []OrderItem  `json:"orderItems,omitempty"`
	User         *OrderUser   `json:"user,omitempty"`
}

type OrderListParams struct {
	Page         int
	Limit        int
	Status       OrderStatus
	PayingMethod PayingMethod
	SortBy       string // "createdAt" or "totalAmount"
	SortOrder    string // "asc" or "desc"
	Search       string
}

func (p OrderListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
	setString(v, "status", string(p.Status))
	setString(v, "payingMethod", string(p.PayingMethod))
	setString(v, "sortBy", p.SortBy)
	setString(v, "sortOrder", p.SortOrder)
	setString(v, "search", p.Search)
	return v
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CancelOrderPayload struct {
	Reason string `json:"reason,omitempty"`
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
