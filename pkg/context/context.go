// Package context carries the metadata of the API call being served.
package context

import "context"

type requestKey struct{}

// Request describes one API call.
type Request struct {
	ID       string
	Method   string
	Route    string // matched route template, e.g. /api/v1/golden-records/:guid
	RemoteIP string
}

// Fields returns the request as log fields.
func (r Request) Fields() map[string]any {
	return map[string]any{
		"request_id":  r.ID,
		"http_method": r.Method,
		"http_route":  r.Route,
		"client_ip":   r.RemoteIP,
	}
}

func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom returns the request stored in ctx, if any.
func RequestFrom(ctx context.Context) (Request, bool) {
	r, ok := ctx.Value(requestKey{}).(Request)
	return r, ok
}

func GetRequestID(ctx context.Context) string {
	r, _ := RequestFrom(ctx)
	return r.ID
}
