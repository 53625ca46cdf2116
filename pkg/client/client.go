// Package client is a typed Go client for the site content API.
//
// Calls never return a Go error. Every outcome, including transport
// failures, is folded into an Envelope with Success set accordingly.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope mirrors the server's response shape.
type Envelope[T any] struct {
	Success bool         `json:"success"`
	Data    T            `json:"data"`
	Count   int          `json:"count,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type Client struct {
	rc *resty.Client

	Services     *Resource[Service]
	Products     *Resource[Product]
	Appointments *Resource[Appointment]
	Inquiries    *Resource[Inquiry]
	Testimonials *Resource[Testimonial]
	Team         *Resource[TeamMember]
	Blog         *Resource[BlogPost]
	Contact      *Resource[ContactMessage]
}

// New returns a client for baseURL, which includes the /api prefix
// (for example http://localhost:5000/api).
func New(baseURL string) *Client {
	return NewWithClient(baseURL, &http.Client{Timeout: 15 * time.Second})
}

func NewWithClient(baseURL string, hc *http.Client) *Client {
	rc := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(retryReads)

	c := &Client{rc: rc}
	c.Services = &Resource[Service]{c: c, path: "/services"}
	c.Products = &Resource[Product]{c: c, path: "/products"}
	c.Appointments = &Resource[Appointment]{c: c, path: "/appointments"}
	c.Inquiries = &Resource[Inquiry]{c: c, path: "/inquiries"}
	c.Testimonials = &Resource[Testimonial]{c: c, path: "/testimonials"}
	c.Team = &Resource[TeamMember]{c: c, path: "/team"}
	c.Blog = &Resource[BlogPost]{c: c, path: "/blog"}
	c.Contact = &Resource[ContactMessage]{c: c, path: "/contact"}
	return c
}

// retryReads retries GETs on transport errors and 5xx. Writes are never
// retried.
func retryReads(res *resty.Response, err error) bool {
	if res == nil || res.Request == nil || res.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || res.StatusCode() >= http.StatusInternalServerError
}

// SetToken sends token as a bearer credential on every later request.
func (c *Client) SetToken(token string) { c.rc.SetAuthToken(token) }

func (c *Client) ClearToken() { c.rc.SetAuthToken("") }

func (c *Client) Token() string { return c.rc.Token }

func do[T any](ctx context.Context, c *Client, method, path string, body any, query url.Values) Envelope[T] {
	var env Envelope[T]
	req := c.rc.R().SetContext(ctx).SetResult(&env)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return Envelope[T]{Error: transportError(err)}
	}
	if res.IsError() {
		return failure[T](res.StatusCode(), res.Body())
	}
	if !gjson.ValidBytes(res.Body()) {
		return Envelope[T]{Error: fmt.Sprintf("HTTP error! status: %d", res.StatusCode())}
	}
	return env
}

// failure builds an envelope from an error response, preferring the
// server's error text, then its message.
func failure[T any](status int, body []byte) Envelope[T] {
	env := Envelope[T]{Error: fmt.Sprintf("HTTP error! status: %d", status)}
	if !gjson.ValidBytes(body) {
		return env
	}
	doc := gjson.ParseBytes(body)
	if msg := doc.Get("error").String(); msg != "" {
		env.Error = msg
	} else if msg := doc.Get("message").String(); msg != "" {
		env.Error = msg
	}
	doc.Get("errors").ForEach(func(_, v gjson.Result) bool {
		env.Errors = append(env.Errors, FieldError{
			Field:   v.Get("field").String(),
			Message: v.Get("message").String(),
		})
		return true
	})
	return env
}

func transportError(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Network error"
}
