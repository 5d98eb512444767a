package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/refdatahub/refgate/internal/backend"
	"github.com/refdatahub/refgate/internal/core/config"
	"github.com/refdatahub/refgate/internal/core/errs"
	"github.com/refdatahub/refgate/internal/observe/metrics"
)

// Adapter forwards inbound requests to the reference-data backend.
//
// Each forwarded call is a single attempt with its own timeout: a failed
// backend call surfaces immediately so proxy latency stays predictable.
// Retrying is the caller's choice, not the adapter's.
type Adapter struct {
	base   string
	exec   *backend.Executor
	limits *Store
	log    *slog.Logger
}

// NewAdapter creates an adapter targeting the backend base address.
// limits may be nil to disable rate limiting entirely.
func NewAdapter(base string, limits *Store, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		base:   strings.TrimSuffix(base, "/"),
		exec:   backend.NewExecutor(),
		limits: limits,
		log:    log,
	}
}

// Router builds the gin engine serving the configured routes plus the
// health and metrics endpoints.
func (a *Adapter) Router(routes []config.RouteConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	for _, route := range routes {
		for _, method := range route.Methods {
			r.Handle(strings.ToUpper(method), route.Path, a.Forward(route))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Forward returns the handler proxying one route.
func (a *Adapter) Forward(route config.RouteConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()

		id, hasIdentity := a.callerIdentity(c)
		if !a.admit(c, route, id, hasIdentity) {
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			a.finish(c, route, http.StatusBadRequest)
			c.JSON(http.StatusBadRequest, errs.Validation("unreadable request body", "body").Wire())
			return
		}

		req := &backend.Request{
			Method:  c.Request.Method,
			URL:     a.targetURL(route, c),
			Header:  a.forwardHeaders(c, id, hasIdentity),
			Body:    body,
			Timeout: route.Timeout(),
			// Single attempt, timeouts surface immediately.
			Retries:        0,
			RetryOnTimeout: false,
		}

		start := time.Now()
		resp, err := a.exec.Do(c.Request.Context(), req)
		a.log.Debug("forwarded backend call",
			"request_id", reqID,
			"route", route.Path,
			"target", req.URL,
			"elapsed", time.Since(start),
			"error", err)

		a.respond(c, route, resp, err)
	}
}

// admit applies the rate limiter. Returns false when the request was
// rejected and a response has been written.
func (a *Adapter) admit(c *gin.Context, route config.RouteConfig, id Identity, hasIdentity bool) bool {
	if !route.RateLimited || a.limits == nil {
		return true
	}

	key := c.ClientIP()
	if hasIdentity && id.UserID != "" {
		key = id.UserID
	}

	allowed, remaining, resetAt := a.limits.CheckAndIncrement(key)
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if allowed {
		return true
	}

	retryAfter := int(time.Until(resetAt).Seconds()) + 1
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	metrics.RateLimitedTotal.Inc()
	a.finish(c, route, http.StatusTooManyRequests)
	c.JSON(http.StatusTooManyRequests, errs.HTTP(http.StatusTooManyRequests, "rate limit exceeded", "").Wire())
	return false
}

// targetURL derives the outbound address: backend base plus the upstream
// path template with route params substituted and the inbound query
// forwarded.
func (a *Adapter) targetURL(route config.RouteConfig, c *gin.Context) string {
	segments := strings.Split(route.Upstream, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = c.Param(seg[1:])
		}
	}
	target := a.base + strings.Join(segments, "/")
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	return target
}

// forwardHeaders propagates auth and derived identity to the backend.
func (a *Adapter) forwardHeaders(c *gin.Context, id Identity, hasIdentity bool) http.Header {
	h := http.Header{}
	if ct := c.GetHeader("Content-Type"); ct != "" {
		h.Set("Content-Type", ct)
	} else {
		h.Set("Content-Type", "application/json")
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		h.Set("Authorization", auth)
	}
	if hasIdentity {
		if id.UserID != "" {
			h.Set("X-User-Id", id.UserID)
		}
		if id.Email != "" {
			h.Set("X-User-Email", id.Email)
		}
		if len(id.Roles) > 0 {
			h.Set("X-User-Roles", strings.Join(id.Roles, ","))
		}
	}
	return h
}

func (a *Adapter) callerIdentity(c *gin.Context) (Identity, bool) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return Identity{}, false
	}
	return identityFromToken(token)
}

// respond translates the executor result into the outbound response.
// The adapter never raises: every outcome is a well-formed JSON response.
func (a *Adapter) respond(c *gin.Context, route config.RouteConfig, resp *backend.Response, err error) {
	if err == nil {
		a.finish(c, route, resp.StatusCode)
		c.Data(resp.StatusCode, contentType(resp), resp.Body)
		return
	}

	if errors.Is(err, context.Canceled) {
		// Client went away; nobody is reading the response.
		a.finish(c, route, 499)
		c.AbortWithStatus(499)
		return
	}

	var ce *errs.Error
	if !errors.As(err, &ce) {
		ce = errs.Unknown(err.Error(), err)
	}

	switch ce.Kind {
	case errs.KindHTTP:
		if ce.StatusCode >= 500 && route.NonCritical {
			// A failing backend counts as down for degradation purposes.
			a.finish(c, route, http.StatusOK)
			c.Data(http.StatusOK, "application/json", []byte("[]"))
			return
		}
		if ce.StatusCode == http.StatusNotFound && route.Default404 != "" {
			a.finish(c, route, http.StatusOK)
			c.Data(http.StatusOK, "application/json", []byte(route.Default404))
			return
		}
		a.finish(c, route, ce.StatusCode)
		c.JSON(ce.StatusCode, ce.Wire())
	case errs.KindNetwork:
		a.degrade(c, route, http.StatusServiceUnavailable, "backend service is unavailable")
	case errs.KindTimeout:
		a.degrade(c, route, http.StatusGatewayTimeout, "backend service did not respond in time")
	case errs.KindValidation:
		a.finish(c, route, http.StatusBadRequest)
		c.JSON(http.StatusBadRequest, ce.Wire())
	default:
		a.finish(c, route, http.StatusInternalServerError)
		c.JSON(http.StatusInternalServerError, ce.Wire())
	}
}

// degrade handles backend-down outcomes: non-critical routes answer with
// an empty collection so interfaces render partial data instead of an
// error page.
func (a *Adapter) degrade(c *gin.Context, route config.RouteConfig, status int, message string) {
	if route.NonCritical {
		a.finish(c, route, http.StatusOK)
		c.Data(http.StatusOK, "application/json", []byte("[]"))
		return
	}
	a.finish(c, route, status)
	c.JSON(status, errs.Wire{Error: message, Status: status})
}

func (a *Adapter) finish(c *gin.Context, route config.RouteConfig, status int) {
	metrics.ProxyRequestsTotal.WithLabelValues(route.Path, strconv.Itoa(status)).Inc()
}

func contentType(resp *backend.Response) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/json"
}
