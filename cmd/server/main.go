package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"campusdrive/internal/auth"
	"campusdrive/internal/blob"
	"campusdrive/internal/cache"
	"campusdrive/internal/capabilities"
	"campusdrive/internal/config"
	"campusdrive/internal/domain/repositories"
	driveRepo "campusdrive/internal/domain/repositories/drive"
	workflowRepo "campusdrive/internal/domain/repositories/workflow"
	"campusdrive/internal/domain/services"
	"campusdrive/internal/events"
	"campusdrive/internal/handler"
	"campusdrive/internal/middleware"
	"campusdrive/internal/notify"
	"campusdrive/internal/repository/memory"
	"campusdrive/internal/repository/postgres"
	postgresDrive "campusdrive/internal/repository/postgres/drive"
	postgresWorkflow "campusdrive/internal/repository/postgres/workflow"
	authsvc "campusdrive/internal/service/auth"
	"campusdrive/internal/service/drive"
	"campusdrive/internal/service/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// stores is the set of repositories the services run on
type stores struct {
	folders      driveRepo.FolderRepository
	files        driveRepo.FileRepository
	requirements workflowRepo.RequirementRepository
	orders       workflowRepo.RequireOrderRepository
	txManager    repositories.TransactionManager
	close        func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Token verification: JWKS in production, shared secret for local development
	jwtVerifier, err := newVerifier(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	st, err := setupStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup store: %v", err)
	}
	defer st.close()

	listingCache, err := setupCache(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup cache: %v", err)
	}

	blobs, err := setupBlobs(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup blob store: %v", err)
	}

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	logger.Info("capability registry initialized", "file_types", len(capabilityRegistry.ListFileTypes()))

	hub := notify.NewHub(logger, originChecker(cfg.CORSOrigins))
	bus := events.NewBus(logger)

	// Create drive services
	driveDeps := drive.Deps{
		Folders:   st.folders,
		Files:     st.files,
		TxManager: st.txManager,
		Guard:     authsvc.NewGuard(),
		Blobs:     blobs,
		Cache:     listingCache,
		CacheTTL:  cfg.CacheTTL,
		Events:    bus,
		Registry:  capabilityRegistry,
		Logger:    logger,
	}
	folderService := drive.NewFolderService(driveDeps)
	fileService := drive.NewFileService(driveDeps)
	archiveService := drive.NewArchiveService(driveDeps)

	// Create workflow engine; it consumes submission events from the drive
	requirementService := workflow.NewRequirementService(workflow.Deps{
		Requirements: st.requirements,
		Orders:       st.orders,
		Folders:      folderService,
		FolderRepo:   st.folders,
		TxManager:    st.txManager,
		Registry:     capabilityRegistry,
		Notifier:     hub,
		Logger:       logger,
	})
	bus.Subscribe(requirementService)

	handlers := &handler.Handlers{
		Folders:       handler.NewFolderHandler(folderService, archiveService, logger),
		Files:         handler.NewFileHandler(fileService, capabilityRegistry, logger),
		Requirements:  handler.NewRequirementHandler(requirementService, logger),
		Notifications: handler.NewNotificationHandler(hub, logger),
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(jwtVerifier, logger, "/health")(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archive-Incomplete"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       0, // Disabled to allow large uploads
		WriteTimeout:      0, // Disabled for downloads and long-lived WebSockets
		IdleTimeout:       60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.JWTVerifier, error) {
	if cfg.JWKSURL != "" {
		return auth.NewJWKSVerifier(ctx, cfg.JWKSURL, logger)
	}
	logger.Warn("JWKS_URL not set, verifying HS256 tokens with JWT_SECRET")
	return auth.NewHMACVerifier(cfg.JWTSecret, logger)
}

// setupStores connects to Postgres when DATABASE_URL is set and falls back to
// the in-memory store otherwise
func setupStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store (data is lost on restart)")
		store := memory.NewStore()
		return &stores{
			folders:      memory.NewFolderRepository(store),
			files:        memory.NewFileRepository(store),
			requirements: memory.NewRequirementRepository(store),
			orders:       memory.NewRequireOrderRepository(store),
			txManager:    memory.NewTransactionManager(store),
			close:        func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected", "max_conns", pool.Config().MaxConns, "table_prefix", tables.Prefix)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &stores{
		folders:      postgresDrive.NewFolderRepository(repoConfig),
		files:        postgresDrive.NewFileRepository(repoConfig),
		requirements: postgresWorkflow.NewRequirementRepository(repoConfig),
		orders:       postgresWorkflow.NewRequireOrderRepository(repoConfig),
		txManager:    postgres.NewTransactionManager(pool, logger),
		close:        pool.Close,
	}, nil
}

func setupCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Cache, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, listing cache disabled")
		return cache.Noop{}, nil
	}
	c, err := cache.NewRedisCache(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	logger.Info("listing cache connected", "ttl", cfg.CacheTTL)
	return c, nil
}

func setupBlobs(cfg *config.Config, logger *slog.Logger) (services.BlobStore, error) {
	if cfg.BlobDir == "" {
		logger.Warn("BLOB_DIR not set, keeping file content in memory")
		return blob.NewMemoryStore(), nil
	}
	store, err := blob.NewFilesystemStore(cfg.BlobDir)
	if err != nil {
		return nil, err
	}
	logger.Info("blob store ready", "root", cfg.BlobDir)
	return store, nil
}

// originChecker accepts WebSocket upgrades from the CORS allow-list
func originChecker(origins string) func(r *http.Request) bool {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(origins, ",") {
		allowed[strings.TrimSpace(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}
