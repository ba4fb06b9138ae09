package api

import (
	"context"
	"net/http"

	mangabridge "github.com/opengovern/manga-bridge"
)

// OrderService reads and cancels orders under /api/orders.
type OrderService struct {
	client *mangabridge.Client
}

func (s *OrderService) List(ctx context.Context, params OrderListParams) ([]Order, *mangabridge.Pagination, error) {
	return list[Order](ctx, s.client, "/api/orders", params.Values())
}

func (s *OrderService) Get(ctx context.Context, id string) (*Order, error) {
	return fetch[Order](ctx, s.client, path("api", "orders", id))
}

func (s *OrderService) Cancel(ctx context.Context, id, reason string) (*Order, error) {
	return send[Order](ctx, s.client, http.MethodPut, path("api", "orders", id, "cancel"), CancelOrderPayload{Reason: reason})
}
