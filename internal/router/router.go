package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"quietseed/internal/config"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/handler"
	"quietseed/internal/metrics"
)

// Handlers groups the HTTP handlers served under /api.
type Handlers struct {
	Post     *handler.PostHandler
	Category *handler.CategoryHandler
	Settings *handler.SettingsHandler
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
}

// Register wires routes and middleware. m and gatherer may be nil, in which
// case no metrics are recorded or exposed.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	gate *SessionGate,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error.Error())
			}
			slog.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	if m != nil {
		e.Use(m.Middleware())
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := []echo.MiddlewareFunc{gate.Authenticate()}
	adminOnly := []echo.MiddlewareFunc{gate.Authenticate(), gate.RequireAdmin()}

	api := e.Group("/api")

	// Public reads
	api.GET("/posts", h.Post.ListPosts)
	api.GET("/posts/featured", h.Post.GetFeaturedPost)
	api.GET("/posts/search", h.Post.SearchPosts)
	api.GET("/posts/category/:slug", h.Post.PostsByCategory)
	api.GET("/posts/:idOrSlug", h.Post.GetPost)
	api.GET("/search", h.Post.Search)
	api.GET("/category/:slug", h.Post.PostsByCategory)
	api.GET("/categories", h.Category.ListCategories)
	api.GET("/settings", h.Settings.GetSettings)
	api.GET("/pages/:id", h.Settings.GetPage)

	// Session lifecycle
	api.POST("/login", h.Auth.Login, loginRateLimiter(cfg.LoginRateLimit))
	api.POST("/refresh", h.Auth.Refresh)
	api.POST("/register", h.Auth.Register)
	api.POST("/logout", h.Auth.Logout, authenticated...)
	api.GET("/me", h.Auth.Me, authenticated...)

	// Admin writes
	api.POST("/posts", h.Post.CreatePost, adminOnly...)
	api.PUT("/posts/:id", h.Post.UpdatePost, adminOnly...)
	api.DELETE("/posts/:id", h.Post.DeletePost, adminOnly...)
	api.POST("/categories", h.Category.CreateCategory, adminOnly...)
	api.PUT("/settings", h.Settings.UpdateSettings, adminOnly...)
	api.PUT("/pages/:id", h.Settings.UpdatePage, adminOnly...)
	api.PUT("/user/:id", h.User.UpdateUser, adminOnly...)
}

// loginRateLimiter throttles login attempts per client IP. A non-positive
// limit disables throttling.
func loginRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error: "too many login attempts",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
