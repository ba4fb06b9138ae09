package mock

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/opengovern/manga-bridge/api"
)

func (s *Server) listUsers(c echo.Context) error {
	search := strings.ToLower(c.QueryParam("search"))
	role := api.UserRole(c.QueryParam("role"))
	status := api.AccountStatus(c.QueryParam("status"))

	s.mu.Lock()
	users := make([]api.User, 0, len(s.users))
	for _, u := range s.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Username), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		if status != "" && u.AccountStatus != status {
			continue
		}
		users = append(users, *u)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	page, meta := paginate(users, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	return respond(c, http.StatusOK, "users fetched", page, meta)
}

func (s *Server) getUser(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[pathParam(c, "id")]
	if !ok {
		return fail(http.StatusNotFound, "user not found")
	}
	return respond(c, http.StatusOK, "user fetched", *u, nil)
}

func (s *Server) updateUser(c echo.Context) error {
	username := c.FormValue("username")
	avatar := ""
	if fh, err := c.FormFile("avatar"); err == nil {
		avatar = "/uploads/avatars/" + fh.Filename
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[pathParam(c, "id")]
	if !ok {
		return fail(http.StatusNotFound, "user not found")
	}
	if username != "" {
		u.Username = username
	}
	if avatar != "" {
		u.Avatar = ptr(avatar)
	}
	u.UpdatedAt = ptr(s.now())
	return respond(c, http.StatusOK, "user updated", *u, nil)
}

func (s *Server) deleteUser(c echo.Context) error {
	id := pathParam(c, "id")
	if me := currentUser(c); me != nil && me.ID == id {
		return fail(http.StatusBadRequest, "cannot delete your own account")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fail(http.StatusNotFound, "user not found")
	}
	delete(s.users, id)
	delete(s.passwords, u.Email)
	for token, owner := range s.refreshTokens {
		if owner == id {
			delete(s.refreshTokens, token)
		}
	}
	for token, r := range s.rotated {
		if r.userID == id {
			delete(s.rotated, token)
		}
	}
	return respond(c, http.StatusOK, "user deleted", nil, nil)
}

func (s *Server) listOrders(c echo.Context) error {
	search := strings.ToLower(c.QueryParam("search"))
	status := api.OrderStatus(c.QueryParam("status"))
	method := api.PayingMethod(c.QueryParam("payingMethod"))
	sortBy := c.QueryParam("sortBy")
	desc := c.QueryParam("sortOrder") != "asc"

	s.mu.Lock()
	orders := make([]api.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && o.Status != status {
			continue
		}
		if method != "" && o.PayingMethod != method {
			continue
		}
		if search != "" && !matchesOrder(o, search) {
			continue
		}
		orders = append(orders, *o)
	}
	s.mu.Unlock()

	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if desc {
			a, b = b, a
		}
		if sortBy == "totalAmount" {
			return a.TotalAmount < b.TotalAmount
		}
		return a.CreatedAt.Before(*b.CreatedAt)
	})
	page, meta := paginate(orders, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	return respond(c, http.StatusOK, "orders fetched", page, meta)
}

func matchesOrder(o *api.Order, search string) bool {
	if strings.Contains(strings.ToLower(o.ID), search) {
		return true
	}
	return o.User != nil && (strings.Contains(strings.ToLower(o.User.Username), search) ||
		strings.Contains(strings.ToLower(o.User.Email), search))
}

func (s *Server) getOrder(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pathParam(c, "id")]
	if !ok {
		return fail(http.StatusNotFound, "order not found")
	}
	return respond(c, http.StatusOK, "order fetched", *o, nil)
}

func (s *Server) cancelOrder(c echo.Context) error {
	var payload api.CancelOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(http.StatusBadRequest, "invalid cancel payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pathParam(c, "id")]
	if !ok {
		return fail(http.StatusNotFound, "order not found")
	}
	if o.Status != api.OrderPending {
		return fail(http.StatusBadRequest, "only pending orders can be cancelled")
	}
	o.Status = api.OrderCancelled
	o.UpdatedAt = ptr(s.now())
	return respond(c, http.StatusOK, "order cancelled", *o, nil)
}
