package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/voltbridge/voltbridge/internal/auth"
	"github.com/voltbridge/voltbridge/internal/handlers"
	"github.com/voltbridge/voltbridge/internal/middleware"
	"github.com/voltbridge/voltbridge/internal/notifications"
	"github.com/voltbridge/voltbridge/internal/services"
)

// Config carries router-level settings.
type Config struct {
	// RateLimitRequests of 0 disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MetricsEnabled    bool
}

// Dependencies bundles everything the router mounts.
type Dependencies struct {
	DB  *gorm.DB
	JWT *iauth.JWTService
	Hub *notifications.Hub

	Users         *services.UserService
	HostRequests  *services.HostRequestService
	Chargers      *services.ChargerService
	Bookings      *services.BookingService
	Reviews       *services.ReviewService
	Notifications *services.NotificationService
	Contact       *services.ContactService
}

type router struct {
	cfg  Config
	deps Dependencies

	auth         *handlers.AuthHandler
	hostRequests *handlers.HostRequestHandler
	chargers     *handlers.ChargerHandler
	bookings     *handlers.BookingHandler
	reviews      *handlers.ReviewHandler
	notifs       *handlers.NotificationHandler
	contact      *handlers.ContactHandler
	health       *handlers.HealthHandler
}

// NewRouter assembles the HTTP surface: global middleware, public
// routes, the authenticated /api group, and the host and admin subgroups.
func NewRouter(cfg Config, deps Dependencies) (*gin.Engine, error) {
	if deps.JWT == nil {
		return nil, errors.New("router requires a jwt service")
	}

	r := &router{cfg: cfg, deps: deps}
	if err := r.buildHandlers(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(),
	)
	if cfg.RateLimitRequests > 0 {
		engine.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}
	engine.NoRoute(middleware.NotFoundHandler)

	engine.GET("/health", r.health.Check)
	if cfg.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.registerPublicRoutes(engine)
	r.registerUserRoutes(engine)
	r.registerHostRoutes(engine)
	r.registerAdminRoutes(engine)

	return engine, nil
}

func (r *router) buildHandlers() error {
	var err error

	if r.auth, err = handlers.NewAuthHandler(r.deps.Users); err != nil {
		return err
	}
	if r.hostRequests, err = handlers.NewHostRequestHandler(r.deps.HostRequests); err != nil {
		return err
	}
	if r.chargers, err = handlers.NewChargerHandler(r.deps.Chargers); err != nil {
		return err
	}
	if r.bookings, err = handlers.NewBookingHandler(r.deps.Bookings); err != nil {
		return err
	}
	if r.reviews, err = handlers.NewReviewHandler(r.deps.Reviews); err != nil {
		return err
	}
	if r.notifs, err = handlers.NewNotificationHandler(r.deps.Notifications, r.deps.Hub); err != nil {
		return err
	}
	if r.contact, err = handlers.NewContactHandler(r.deps.Contact); err != nil {
		return err
	}
	r.health = handlers.NewHealthHandler(r.deps.DB)

	return nil
}
