package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gwskins/GWSkins_Go/internal/catalog"
	"github.com/gwskins/GWSkins_Go/internal/database"
	"github.com/gwskins/GWSkins_Go/internal/handler"
	"github.com/gwskins/GWSkins_Go/internal/inventory"
	"github.com/gwskins/GWSkins_Go/internal/logger"
	"github.com/gwskins/GWSkins_Go/internal/metrics"
	"github.com/gwskins/GWSkins_Go/internal/settlement"
	"github.com/gwskins/GWSkins_Go/internal/user"
)

type Server struct {
	httpServer        *http.Server
	dbPool            database.Pool
	userService       user.Service
	catalogService    catalog.Service
	inventoryService  inventory.Service
	settlementService settlement.Service
}

// NewServer creates a new Server instance
func NewServer(port int, corsOrigins []string, dbPool database.Pool, session handler.SessionReporter, userService user.Service, catalogService catalog.Service, inventoryService inventory.Service, settlementService settlement.Service) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBody))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool, session))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cases", func(r chi.Router) {
			r.Get("/", handler.HandleListCases(catalogService))
			r.Get("/{id}/skins", handler.HandleListCaseSkins(catalogService))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{steam_id}/wallet", handler.HandleGetWallet(userService))
			r.Post("/tradeurl", handler.HandleUpdateTradeURL(userService))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", handler.HandleGrantEntry(inventoryService))
			r.Get("/{user_id}", handler.HandleListInventory(inventoryService))
		})

		r.Route("/settlement", func(r chi.Router) {
			r.Post("/liquidate", handler.HandleLiquidate(settlementService))
			r.Post("/liquidate-all", handler.HandleLiquidateAll(settlementService))
			r.Post("/deliver", handler.HandleRequestDelivery(settlementService))
			r.Get("/deliveries/{id}", handler.HandleGetDelivery(settlementService))
		})

		r.Get("/bot/inventory", handler.HandleAgentInventory(settlementService))
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:            dbPool,
		userService:       userService,
		catalogService:    catalogService,
		inventoryService:  inventoryService,
		settlementService: settlementService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health and metrics endpoints are scraped constantly; logging them
		// is pure noise
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAuthorization) || strings.EqualFold(k, "Cookie") {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
