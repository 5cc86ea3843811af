package obs

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type requestInfoKey struct{}

// RequestInfo carries facts that inner handlers learn and outer middleware report.
type RequestInfo struct {
	Route       string
	StatementID string
}

// WithRequestInfo attaches an empty RequestInfo to ctx unless one is present.
func WithRequestInfo(ctx context.Context) (context.Context, *RequestInfo) {
	if info := RequestInfoFrom(ctx); info != nil {
		return ctx, info
	}
	info := &RequestInfo{}
	return context.WithValue(ctx, requestInfoKey{}, info), info
}

// WithRoute pins the route label for a request, bypassing the router lookup.
func WithRoute(ctx context.Context, route string) context.Context {
	ctx, info := WithRequestInfo(ctx)
	info.Route = route
	return ctx
}

// RequestInfoFrom returns the RequestInfo on ctx, or nil.
func RequestInfoFrom(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*RequestInfo)
	return info
}

// SetStatementID records the identifier of the statement rendered for this request.
func SetStatementID(ctx context.Context, id string) {
	if info := RequestInfoFrom(ctx); info != nil {
		info.StatementID = id
	}
}

// RequestInfoMiddleware installs a RequestInfo before routing so middleware
// further down the chain can read what handlers record.
func RequestInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := WithRequestInfo(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// routeOf resolves the route label once the router has matched the request.
func routeOf(r *http.Request, fallback string) string {
	if info := RequestInfoFrom(r.Context()); info != nil && info.Route != "" {
		return info.Route
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return fallback
}

func statementIDOf(r *http.Request) string {
	if info := RequestInfoFrom(r.Context()); info != nil {
		return info.StatementID
	}
	return ""
}
