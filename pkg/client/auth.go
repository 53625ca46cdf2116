package client

import (
	"context"
	"net/http"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates and, on success, keeps the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) Envelope[Session] {
	env := do[Session](ctx, c, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if env.Success && env.Data.Token != "" {
		c.SetToken(env.Data.Token)
	}
	return env
}

func (c *Client) Profile(ctx context.Context) Envelope[User] {
	return do[User](ctx, c, http.MethodGet, "/auth/profile", nil, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, body any) Envelope[User] {
	return do[User](ctx, c, http.MethodPut, "/auth/profile", body, nil)
}

// Register creates a dashboard user. It requires an admin token.
func (c *Client) Register(ctx context.Context, email, password, name, role string) Envelope[User] {
	body := map[string]string{"email": email, "password": password, "name": name}
	if role != "" {
		body["role"] = role
	}
	return do[User](ctx, c, http.MethodPost, "/auth/register", body, nil)
}

type Dashboard struct {
	Totals             map[string]int `json:"totals"`
	RecentAppointments []Appointment  `json:"recentAppointments"`
	RecentInquiries    []Inquiry      `json:"recentInquiries"`
}

type Breakdown struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority,omitempty"`
}

func (c *Client) Dashboard(ctx context.Context) Envelope[Dashboard] {
	return do[Dashboard](ctx, c, http.MethodGet, "/analytics/dashboard", nil, nil)
}

func (c *Client) AppointmentStats(ctx context.Context) Envelope[Breakdown] {
	return do[Breakdown](ctx, c, http.MethodGet, "/analytics/appointments", nil, nil)
}

func (c *Client) InquiryStats(ctx context.Context) Envelope[Breakdown] {
	return do[Breakdown](ctx, c, http.MethodGet, "/analytics/inquiries", nil, nil)
}
