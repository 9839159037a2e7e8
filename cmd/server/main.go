package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"imgtree/internal/auth"
	"imgtree/internal/config"
	"imgtree/internal/handler"
	"imgtree/internal/middleware"
	"imgtree/internal/repository/drive"
	"imgtree/internal/repository/rest"
	"imgtree/internal/service/account"
	"imgtree/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging, optionally mirrored to a rotating file
	var logFile *os.File
	if cfg.LogDir != "" {
		f, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer f.Close()
		logFile = f
	}

	var logger *slog.Logger
	if logFile != nil {
		logger = config.NewLogger(cfg, logFile)
	} else {
		logger = config.NewLogger(cfg, nil)
	}
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"backend_url", cfg.BackendURL,
	)

	// Token verification: JWKS when configured, unverified parsing otherwise
	var verifier auth.TokenVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		verifier = v
	} else {
		if !cfg.IsDev() {
			log.Fatalf("JWKS_URL is required outside dev")
		}
		verifier = auth.NewUnverifiedParser(logger)
		logger.Warn("DEBUG MODE: token signatures are not verified (NEVER use in production!)")
	}
	defer verifier.Close()

	// Backend clients
	backend := rest.NewClient(&rest.ClientConfig{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
	})
	driveClient := drive.NewClient(&drive.ClientConfig{
		BaseURL: cfg.DriveAPIURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
	})

	// Services
	workspaces := workspace.NewRegistry(&workspace.Config{
		Backend:     backend,
		Drive:       driveClient,
		Concurrency: cfg.UploadConcurrency,
		Logger:      logger,
	}, cfg.SessionIdleTimeout)
	accountService := account.NewAccountService(backend, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workspaces.Run(ctx)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountService, workspaces, logger)
	folderHandler := handler.NewFolderHandler(workspaces, logger)
	treeHandler := handler.NewTreeHandler(workspaces, logger)
	imageHandler := handler.NewImageHandler(workspaces, logger)
	permissionHandler := handler.NewPermissionHandler(workspaces, logger)
	driveHandler := handler.NewDriveHandler(workspaces, logger)

	logger.Info("services initialized")

	// Authenticated routes (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()

	api.HandleFunc("POST /api/auth/logout", accountHandler.Logout)

	// Folder routes
	api.HandleFunc("POST /api/folders/refresh", folderHandler.Refresh)
	api.HandleFunc("GET /api/contents", folderHandler.RootContents)
	api.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	api.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	api.HandleFunc("GET /api/folders/{id}/contents", folderHandler.GetFolder)
	api.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	api.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	api.HandleFunc("GET /api/selection", folderHandler.GetSelection)
	api.HandleFunc("PUT /api/selection", folderHandler.SetSelection)

	// Tree routes
	api.HandleFunc("GET /api/tree", treeHandler.GetTree)
	api.HandleFunc("GET /api/tree/render", treeHandler.RenderTree)

	// Image routes
	api.HandleFunc("GET /api/folders/{id}/images", imageHandler.ListImages)
	api.HandleFunc("POST /api/folders/{id}/images", imageHandler.UploadImages)
	api.HandleFunc("DELETE /api/images/{id}", imageHandler.DeleteImage)

	// Sharing routes
	api.HandleFunc("GET /api/folders/{id}/permissions", permissionHandler.ListPermissions)
	api.HandleFunc("POST /api/folders/{id}/permissions", permissionHandler.Share)
	api.HandleFunc("DELETE /api/folders/{id}/permissions/{email}", permissionHandler.Unshare)

	// Drive picker routes
	api.HandleFunc("GET /api/drive/images", driveHandler.ListPickerImages)
	api.HandleFunc("POST /api/folders/{id}/import", driveHandler.ImportPicked)

	// Public routes; everything else goes through auth
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("POST /api/auth/login", accountHandler.Login)
	mux.HandleFunc("POST /api/auth/register", accountHandler.Register)
	mux.HandleFunc("POST /api/auth/google", accountHandler.GoogleLogin)
	mux.Handle("/api/", middleware.Auth(verifier, logger)(api))

	// Order: CORS → Logging → Recovery → Routes
	var h http.Handler = middleware.Chain(mux,
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
	)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Drive-Token"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       time.Minute, // uploads and imports extend their own deadlines
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
