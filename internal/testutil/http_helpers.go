package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UserRequestBuilder builds requests for the /users/{username} routes with
// the chi route parameters already set, so handlers can be called directly
// without going through the router.
//
// Example usage:
//
//	// GET /users/alice/portfolio/chart?range=1W
//	req := testutil.NewUserRequest(http.MethodGet, "alice", "/portfolio/chart").
//	    WithQuery("range", "1W").
//	    Build()
//
//	// POST /users/alice/portfolio/visibility/AAPL
//	req := testutil.NewUserRequest(http.MethodPost, "alice", "/portfolio/visibility/AAPL").
//	    WithParam("ticker", "AAPL").
//	    Build()
type UserRequestBuilder struct {
	method   string
	username string
	subpath  string
	params   map[string]string
	query    url.Values
	body     string
}

// NewUserRequest starts a request for subpath below /users/{username}.
func NewUserRequest(method, username, subpath string) *UserRequestBuilder {
	return &UserRequestBuilder{
		method:   method,
		username: username,
		subpath:  subpath,
		params:   map[string]string{},
		query:    url.Values{},
	}
}

// WithParam sets an additional route parameter such as ticker.
func (b *UserRequestBuilder) WithParam(key, value string) *UserRequestBuilder {
	b.params[key] = value
	return b
}

// WithQuery adds a query string parameter.
func (b *UserRequestBuilder) WithQuery(key, value string) *UserRequestBuilder {
	b.query.Add(key, value)
	return b
}

// WithJSON sets a JSON request body.
func (b *UserRequestBuilder) WithJSON(body string) *UserRequestBuilder {
	b.body = body
	return b
}

// Build returns the request.
func (b *UserRequestBuilder) Build() *http.Request {
	target := "/users/" + url.PathEscape(b.username) + b.subpath
	if len(b.query) > 0 {
		target += "?" + b.query.Encode()
	}

	var body io.Reader
	if b.body != "" {
		body = strings.NewReader(b.body)
	}
	req := httptest.NewRequest(b.method, target, body)
	if b.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("username", b.username)
	for key, value := range b.params {
		rctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// NewSearchRequest returns GET /search/stocks with query as the search text.
func NewSearchRequest(query string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/search/stocks?"+url.Values{"query": {query}}.Encode(), nil)
}
