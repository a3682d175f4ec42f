package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidfales/soccertraining-backend/api/controllers"
	"github.com/davidfales/soccertraining-backend/api/middleware"
	"github.com/davidfales/soccertraining-backend/internal/adminauth"
	blogsvc "github.com/davidfales/soccertraining-backend/internal/blog"
	checkoutsvc "github.com/davidfales/soccertraining-backend/internal/checkout"
	contactsvc "github.com/davidfales/soccertraining-backend/internal/contact"
	gallerysvc "github.com/davidfales/soccertraining-backend/internal/gallery"
	portalsvc "github.com/davidfales/soccertraining-backend/internal/portal"
	sessionssvc "github.com/davidfales/soccertraining-backend/internal/sessions"
	stripewebhook "github.com/davidfales/soccertraining-backend/internal/webhooks/stripe"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/davidfales/soccertraining-backend/pkg/metrics"
	"github.com/davidfales/soccertraining-backend/pkg/redis"
	"github.com/davidfales/soccertraining-backend/pkg/storage/gcs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client
	GCS   gcs.Pinger

	AdminAuth adminauth.Service
	Blog      blogsvc.Service
	Gallery   gallerysvc.Service
	Sessions  sessionssvc.Service
	Checkout  checkoutsvc.Service
	Webhooks  stripewebhook.Service
	Portal    portalsvc.Service
	Contact   contactsvc.Service

	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Site.BaseURL),
		middleware.ClientIP(),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	healthDeps := map[string]controllers.Pinger{
		"database": deps.DB,
		"redis":    pingerOrNil(deps.Redis),
		"storage":  deps.GCS,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, healthDeps))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", controllers.StripeWebhook(deps.Webhooks, cfg.Stripe, logg))
	})

	r.Route("/api/v1/blog", func(r chi.Router) {
		r.Get("/posts", controllers.ListPosts(deps.Blog, logg))
		r.Get("/posts/{slug}", controllers.GetPostBySlug(deps.Blog, logg))
		r.Get("/comments/{postID}", controllers.ListPostComments(deps.Blog, logg))
		r.Post("/comments/{postID}", controllers.CreateComment(deps.Blog, logg))
		r.Get("/likes/{postID}", controllers.GetLikeStatus(deps.Blog, logg))
		r.Post("/likes/{postID}", controllers.ToggleLike(deps.Blog, logg))
	})

	r.Route("/api/v1/gallery", func(r chi.Router) {
		r.Get("/photos", controllers.ListPhotos(deps.Gallery, logg))
		r.Get("/photos/featured", controllers.ListFeaturedPhotos(deps.Gallery, logg))
		r.Get("/photos/{slug}", controllers.GetPhotoBySlug(deps.Gallery, logg))
	})

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Get("/", controllers.ListSessions(deps.Sessions, logg))
		r.Get("/{sessionID}", controllers.GetSession(deps.Sessions, logg))
	})

	r.Post("/api/v1/checkout", controllers.StartCheckout(deps.Checkout, logg))
	r.Post("/api/v1/contact", controllers.SubmitContact(deps.Contact, logg))

	r.Route("/api/v1/portal", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.PortalLogin(deps.Portal, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.PortalAuth(cfg.JWT, logg))
			r.Get("/me", controllers.PortalMe(deps.Portal, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AdminLogin(deps.AdminAuth, cfg.Admin, logg))
			r.Get("/verify", controllers.AdminVerify(deps.AdminAuth, logg))
			r.Post("/logout", controllers.AdminLogout(cfg.Admin))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.AdminAuth, logg))

			r.Route("/blog", func(r chi.Router) {
				r.Get("/posts", controllers.AdminListPosts(deps.Blog, logg))
				r.Post("/posts", controllers.AdminCreatePost(deps.Blog, logg))
				r.Get("/posts/slug-check", controllers.AdminCheckPostSlug(deps.Blog, logg))
				r.Get("/posts/{postID}", controllers.AdminGetPost(deps.Blog, logg))
				r.Patch("/posts/{postID}", controllers.AdminUpdatePost(deps.Blog, logg))
				r.Delete("/posts/{postID}", controllers.AdminDeletePost(deps.Blog, logg))

				r.Get("/comments", controllers.AdminListComments(deps.Blog, logg))
				r.Post("/comments/{commentID}/approve", controllers.AdminApproveComment(deps.Blog, logg))
				r.Delete("/comments/{commentID}", controllers.AdminDeleteComment(deps.Blog, logg))
			})

			r.Route("/gallery", func(r chi.Router) {
				r.Get("/photos", controllers.AdminListPhotos(deps.Gallery, logg))
				r.Post("/photos", controllers.AdminCreatePhoto(deps.Gallery, logg))
				r.Post("/photos/upload", controllers.AdminUploadPhoto(deps.Gallery, cfg.GCS, logg))
				r.Get("/photos/slug-check", controllers.AdminCheckPhotoSlug(deps.Gallery, logg))
				r.Get("/photos/{photoID}", controllers.AdminGetPhoto(deps.Gallery, logg))
				r.Patch("/photos/{photoID}", controllers.AdminUpdatePhoto(deps.Gallery, logg))
				r.Delete("/photos/{photoID}", controllers.AdminDeletePhoto(deps.Gallery, logg))
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateSession(deps.Sessions, logg))
				r.Patch("/{sessionID}", controllers.AdminUpdateSession(deps.Sessions, logg))
				r.Delete("/{sessionID}", controllers.AdminDeleteSession(deps.Sessions, logg))
			})
		})
	})

	return r
}

// pingerOrNil keeps a typed-nil redis client out of the health map.
func pingerOrNil(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
