package rest

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	core_port "dreamsquare-service/internal/core/port"
	"dreamsquare-service/internal/core/port/usecases_port"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// ServerConfig - параметры HTTP-сервера.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// EnforceAdminRole закрывает админские маршруты токеном и ролью admin.
	EnforceAdminRole bool
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// Handlers - все обработчики, которые регистрирует сервер.
type Handlers struct {
	Users      *UserHandler
	Properties *PropertyHandler
	Offers     *OfferHandler
	Payments   *PaymentHandler
	Wishlist   *WishlistHandler
	Reviews    *ReviewHandler
}

// Server - REST API сервер dreamsquare-service.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(cfg ServerConfig, h Handlers, verifier core_port.TokenVerifierPort,
	roleUC usecases_port.GetUserRoleUseCasePort, baseLogger core_port.LoggerPort) *Server {

	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	// Контекст запросов отменяется при Shutdown, иначе SSE-потоки держат остановку до таймаута
	baseCtx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, h, verifier, roleUC, baseLogger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	httpServer.RegisterOnShutdown(cancel)

	return &Server{httpServer: httpServer, logger: baseLogger}
}

// NewRouter собирает chi-роутер со всеми маршрутами.
func NewRouter(cfg ServerConfig, h Handlers, verifier core_port.TokenVerifierPort,
	roleUC usecases_port.GetUserRoleUseCasePort, baseLogger core_port.LoggerPort) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMW := AuthMiddleware(verifier)
	adminMW := RequireRole(roleUC, domain.RoleAdmin)

	// admin - маршруты модерации. По умолчанию открыты, как и раньше;
	// с EnforceAdminRole требуют токен и роль admin.
	admin := func(r chi.Router, authenticated bool) chi.Router {
		if !cfg.EnforceAdminRole {
			return r
		}
		if authenticated {
			return r.With(adminMW)
		}
		return r.With(authMW, adminMW)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("DreamSquare Real Estate Server is running..."))
	})

	// --- Публичные маршруты ---
	r.Post("/users", h.Users.RegisterUser)
	r.Get("/users", h.Users.ListUsers)
	r.Get("/users/role/{email}", h.Users.GetUserRole)
	admin(r, false).Patch("/users/admin/{id}", h.Users.SetRole(domain.RoleAdmin))
	admin(r, false).Patch("/users/agent/{id}", h.Users.SetRole(domain.RoleAgent))
	admin(r, false).Patch("/users/fraud/{id}", h.Users.MarkFraud)
	admin(r, false).Delete("/users/{id}", h.Users.DeleteUser)

	r.Get("/properties", h.Properties.ListProperties)
	r.Get("/advertised-properties", h.Properties.ListAdvertisedProperties)

	r.Get("/reviews", h.Reviews.ListReviews)
	r.Get("/reviews/{id}", h.Reviews.ListUserReviews)

	r.Get("/offers", h.Offers.ListBuyerOffers)
	r.Get("/offers/agent/{email}", h.Offers.ListAgentOffers)
	r.Get("/offers/{id}", h.Offers.GetOffer)

	r.Post("/create-payment-intent", h.Payments.CreatePaymentIntent)
	r.Get("/payments/agent/{email}", h.Payments.ListAgentPayments)

	// --- Маршруты с проверкой токена ---
	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Post("/properties", h.Properties.CreateProperty)
		r.Get("/properties/{id}", h.Properties.GetProperty)
		r.Put("/properties/{id}", h.Properties.UpdateProperty)
		r.Delete("/properties/{id}", h.Properties.DeleteProperty)
		r.Post("/properties/{id}/reviews", h.Properties.AddReview)
		admin(r, true).Get("/admin/properties", h.Properties.ListAllProperties)
		admin(r, true).Patch("/properties/{id}/status", h.Properties.ChangeStatus)
		admin(r, true).Patch("/properties/{id}/advertise", h.Properties.SetAdvertised)

		r.Post("/wishlist", h.Wishlist.AddItem)
		r.Get("/wishlist/{email}", h.Wishlist.GetWishlist)
		r.Delete("/wishlist/{email}/{propertyId}", h.Wishlist.RemoveItem)

		r.Post("/reviews/{id}", h.Reviews.CreateReview)
		r.Delete("/reviews/{id}", h.Reviews.DeleteReview)
		admin(r, true).Patch("/reviews/{id}/status", h.Reviews.ChangeStatus)

		r.Post("/offers", h.Offers.SubmitOffer)
		r.Get("/offers/stream", h.Offers.SubscribeToOffers)
		r.Patch("/offers/{id}/accept", h.Offers.AcceptOffer)
		r.Patch("/offers/{id}/reject", h.Offers.RejectOffer)

		r.Patch("/project-status/{id}", h.Offers.MarkBought)
		r.Post("/payments", h.Payments.RecordPayment)
	})

	return r
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
