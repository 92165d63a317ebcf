package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/safar/go-shop-api/internal/auth"
	"github.com/safar/go-shop-api/internal/config"
	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/metrics"
	"go.uber.org/zap"
)

type server struct {
	db      *sql.DB
	cfg     *config.Config
	logger  *zap.Logger
	tokens  *auth.TokenIssuer
	metrics *metrics.ServerMetrics
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("Connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database")

	s := &server{
		db:      db,
		cfg:     cfg,
		logger:  logger,
		tokens:  auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		metrics: metrics.NewServerMetrics(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/users/register", s.handleRegister)
	mux.HandleFunc("/users/login", s.handleLogin)
	mux.HandleFunc("/users/", s.handleUserByID)
	mux.HandleFunc("/products", s.handleProducts)
	mux.HandleFunc("/products/", s.handleProductByID)
	mux.HandleFunc("/orders", s.handleOrders)
	mux.HandleFunc("/orders/", s.handleOrderByID)

	handler := s.withObservability(s.withRateLimit(mux))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
