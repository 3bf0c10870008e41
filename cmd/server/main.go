package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/acme/autocert"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/config"
	"github.com/tariel-x/eventease/internal/database"
	"github.com/tariel-x/eventease/internal/handlers"
	"github.com/tariel-x/eventease/internal/notify"
	"github.com/tariel-x/eventease/internal/social"
	"github.com/tariel-x/eventease/internal/store"
	"github.com/tariel-x/eventease/internal/tokens"
)

const AppVersion = "1.0.0"

var buildTimestamp = time.Now().Unix()

func main() {
	httpOnly := flag.Bool("http-only", false, "Serve plain HTTP behind a proxy (disables Let's Encrypt)")
	dbPath := flag.String("db", "", "Path to the SQLite database file (overrides DATABASE_PATH)")
	flag.Parse()

	bootLog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	overrides := config.Overrides{DatabasePath: dbPath}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "http-only" {
			overrides.HTTPOnly = httpOnly
		}
	})
	cfg, err := config.Load(overrides, bootLog)
	if err != nil {
		bootLog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	logger.Info("EventEase server starting", "version", AppVersion, "build", buildTimestamp)

	db, err := database.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	st := store.New(db)

	hub := notify.NewHub(logger)
	senders := []notify.Sender{hub}
	if cfg.PushEnabled {
		senders = append(senders, notify.NewWebPush(st, notify.VAPID{
			PublicKey:  cfg.VAPID.PublicKey,
			PrivateKey: cfg.VAPID.PrivateKey,
			Subject:    cfg.VAPID.Subject,
		}, logger))
		logger.Info("web push enabled")
	}

	h := handlers.New(
		cfg,
		st,
		social.NewService(tokens.Nanoid{}),
		auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		hub,
		notify.NewNotifier(logger, senders...),
		websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger,
	)

	router := setupRouter(h, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	startServer(ctx, router, cfg, logger)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("EventEase server stopped")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), slogGinLogger(logger))

	router.Use(func(c *gin.Context) {
		origin := "*"
		if cfg.FrontendURI != "" {
			origin = cfg.FrontendURI
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": AppVersion})
	})
	h.Register(router)

	return router
}

func newServer(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     log.New(newTLSErrorWriter(logger), "", 0),
	}
}

// serve runs srv until ctx is cancelled and then drains it.
func serve(ctx context.Context, srv *http.Server, listen func() error, logger *slog.Logger) {
	errCh := make(chan error, 1)
	go func() { errCh <- listen() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "addr", srv.Addr, "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", "addr", srv.Addr, "error", err)
		}
	}
}

func startServer(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	if cfg.HTTPOnly {
		startHTTP(ctx, router, cfg, logger)
		return
	}

	if err := os.MkdirAll(cfg.CertsDir, 0o700); err != nil {
		logger.Error("failed to create certs directory", "path", cfg.CertsDir, "error", err)
		return
	}

	domain := normalizeDomain(cfg.Domain)
	if domain == "localhost" || domain == "127.0.0.1" {
		logger.Warn("Let's Encrypt will not issue certificates for localhost, run with -http-only for local development")
	}

	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
		HostPolicy: func(_ context.Context, host string) error {
			if normalizeDomain(host) != domain {
				return errors.New("host " + host + " not configured")
			}
			return nil
		},
		Cache: autocert.DirCache(cfg.CertsDir),
	}

	acme := m.HTTPHandler(nil)
	redirect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/.well-known/acme-challenge/") {
			acme.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+r.RequestURI, http.StatusMovedPermanently)
	})

	httpServer := newServer(":"+cfg.HTTPPort, redirect, logger)
	httpsServer := newServer(":"+cfg.HTTPSPort, router, logger)
	httpsServer.TLSConfig = m.TLSConfig()

	go serve(ctx, httpServer, httpServer.ListenAndServe, logger)
	go watchCertificate(ctx, m, domain, logger)

	logger.Info("HTTPS server starting", "port", cfg.HTTPSPort, "domain", domain, "certs_dir", cfg.CertsDir)
	serve(ctx, httpsServer, func() error { return httpsServer.ListenAndServeTLS("", "") }, logger)
}

func startHTTP(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *slog.Logger) {
	srv := newServer(":"+cfg.HTTPPort, router, logger)
	logger.Info("HTTP server starting", "port", cfg.HTTPPort, "frontend_uri", cfg.FrontendURI)
	serve(ctx, srv, srv.ListenAndServe, logger)
}

// watchCertificate touches the certificate shortly after start and then
// daily so autocert renews it before it lapses.
func watchCertificate(ctx context.Context, m *autocert.Manager, domain string, logger *slog.Logger) {
	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		cert, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: domain})
		switch {
		case err != nil:
			logger.Warn("certificate not available yet", "domain", domain, "error", err)
		case cert.Leaf != nil:
			logger.Info("certificate checked", "domain", domain, "expires", cert.Leaf.NotAfter.Format(time.DateOnly))
		}
		timer.Reset(24 * time.Hour)
	}
}

// normalizeDomain lowercases the host and strips a leading "www.".
func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "www.")
}
