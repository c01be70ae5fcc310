package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"campusdrive/internal/blob"
	"campusdrive/internal/cache"
	"campusdrive/internal/capabilities"
	"campusdrive/internal/config"
	"campusdrive/internal/domain/models"
	driveModels "campusdrive/internal/domain/models/drive"
	"campusdrive/internal/domain/services"
	driveSvc "campusdrive/internal/domain/services/drive"
	workflowSvc "campusdrive/internal/domain/services/workflow"
	"campusdrive/internal/events"
	"campusdrive/internal/repository/postgres"
	postgresDrive "campusdrive/internal/repository/postgres/drive"
	postgresWorkflow "campusdrive/internal/repository/postgres/workflow"
	authsvc "campusdrive/internal/service/auth"
	"campusdrive/internal/service/drive"
	"campusdrive/internal/service/workflow"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	lecturer = models.Actor{AccountID: "seed-lecturer", Email: "lecturer@campus.test", Role: "lecturer"}
	students = []models.Actor{
		{AccountID: "seed-student-1", Email: "student1@campus.test", Role: "student"},
		{AccountID: "seed-student-2", Email: "student2@campus.test", Role: "student"},
	}
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	clearData := flag.Bool("clear-data", false, "Clear all rows (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required for seeding")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared successfully")
		return
	}

	// Blob content only survives when a blob directory is configured
	var blobs services.BlobStore = blob.NewMemoryStore()
	if cfg.BlobDir != "" {
		fs, err := blob.NewFilesystemStore(cfg.BlobDir)
		if err != nil {
			log.Fatalf("Failed to open blob dir: %v", err)
		}
		blobs = fs
	} else {
		log.Println("Warning: BLOB_DIR not set, seeded file content will not be downloadable")
	}

	// Seeded listings must not be hidden behind stale cache entries
	var listingCache services.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rc.Close()
		listingCache = rc
	}

	registry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load capability registry: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	txManager := postgres.NewTransactionManager(pool, logger)
	bus := events.NewBus(logger)

	deps := drive.Deps{
		Folders:   postgresDrive.NewFolderRepository(repoConfig),
		Files:     postgresDrive.NewFileRepository(repoConfig),
		TxManager: txManager,
		Guard:     authsvc.NewGuard(),
		Blobs:     blobs,
		Cache:     listingCache,
		CacheTTL:  cfg.CacheTTL,
		Events:    bus,
		Registry:  registry,
		Logger:    logger,
	}
	folderService := drive.NewFolderService(deps)
	fileService := drive.NewFileService(deps)
	requirementService := workflow.NewRequirementService(workflow.Deps{
		Requirements: postgresWorkflow.NewRequirementRepository(repoConfig),
		Orders:       postgresWorkflow.NewRequireOrderRepository(repoConfig),
		Folders:      folderService,
		FolderRepo:   deps.Folders,
		TxManager:    txManager,
		Registry:     registry,
		Logger:       logger,
	})
	bus.Subscribe(requirementService)

	if err := seed(ctx, folderService, fileService, requirementService); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete!")
}

// seed builds a small course tree for the lecturer and one open requirement
func seed(ctx context.Context, folders driveSvc.FolderService, files driveSvc.FileService, requirements workflowSvc.RequirementService) error {
	course, err := folders.CreateFolder(ctx, lecturer, &driveSvc.CreateFolderRequest{Name: "Distributed Systems"})
	if err != nil {
		return err
	}
	log.Printf("Created folder %s (ID: %s)", course.Name, course.ID)

	for _, name := range []string{"Lectures", "Labs"} {
		sub, err := folders.CreateFolder(ctx, lecturer, &driveSvc.CreateFolderRequest{Name: name, ParentID: &course.ID})
		if err != nil {
			return err
		}
		log.Printf("Created folder %s/%s (ID: %s)", course.Name, sub.Name, sub.ID)

		content := "Notes for " + strings.ToLower(name) + "\n"
		file, err := files.Upload(ctx, lecturer, &driveSvc.UploadFileRequest{
			Name:     "README",
			Type:     driveModels.FileTypeTxt,
			Size:     int64(len(content)),
			FolderID: &sub.ID,
			Content:  strings.NewReader(content),
		})
		if err != nil {
			return err
		}
		log.Printf("Uploaded %s.%s (ID: %s)", file.Name, file.Type, file.ID)
	}

	recipients := make([]workflowSvc.RecipientInput, 0, len(students))
	for _, s := range students {
		recipients = append(recipients, workflowSvc.RecipientInput{AccountID: s.AccountID, Email: s.Email})
	}

	now := time.Now()
	req, err := requirements.CreateRequirement(ctx, lecturer, &workflowSvc.CreateRequirementRequest{
		Title:      "Lab 1 report",
		Recipients: recipients,
		Folder:     workflowSvc.SubmissionFolderSpec{ParentID: &course.ID},
		FileType:   driveModels.FileTypeDocx,
		Message:    "Submit your lab report as a single docx file.",
		StartDate:  now,
		EndDate:    now.Add(14 * 24 * time.Hour),
	})
	if err != nil {
		return err
	}
	log.Printf("Created requirement %q for %d students (ID: %s)", req.Title, len(req.To), req.ID)
	return nil
}

// dropAllTables drops every table owned by this prefix
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	for _, table := range []string{tables.RequireOrders, tables.Requirements, tables.Files, tables.Folders} {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}
	return nil
}

// clearAllData empties every table but keeps the schema
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	_, err := pool.Exec(ctx, "TRUNCATE "+tables.RequireOrders+", "+tables.Requirements+", "+tables.Files+", "+tables.Folders)
	return err
}
