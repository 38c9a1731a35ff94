// Command twealthd is the Twealth scoring service. It serves the
// recompute and score-read endpoints, runs database migrations on
// startup, and recomputes every user's just-closed month on a schedule.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/twealth/twealth/internal/api"
	"github.com/twealth/twealth/internal/archive"
	"github.com/twealth/twealth/internal/platform"
	"github.com/twealth/twealth/internal/recompute"
	"github.com/twealth/twealth/internal/store"
	"github.com/twealth/twealth/pkg/config"
	"github.com/twealth/twealth/pkg/scoring"
)

type serviceConfig struct {
	Port           string
	DatabaseURL    string
	APIKey         string
	ConfigPath     string
	ArchiveBackend string // "", "local", "s3", "gcs"
	ArchivePath    string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	GCSBucket      string
	RecomputeCron  string
}

func loadServiceConfig() serviceConfig {
	return serviceConfig{
		Port:           envOrDefault("PORT", "8080"),
		DatabaseURL:    envOrDefault("DATABASE_URL", "postgres://localhost:5432/twealth?sslmode=disable"),
		APIKey:         os.Getenv("API_KEY"),
		ConfigPath:     os.Getenv("TWEALTH_CONFIG"),
		ArchiveBackend: os.Getenv("ARCHIVE_BACKEND"),
		ArchivePath:    envOrDefault("ARCHIVE_PATH", "/tmp/twealth-archive"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       os.Getenv("S3_REGION"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		RecomputeCron:  envOrDefault("RECOMPUTE_CRON", "0 2 1 * *"),
	}
}

func main() {
	_ = godotenv.Load()
	svcCfg := loadServiceConfig()

	db, err := sql.Open("postgres", svcCfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cfgPath := svcCfg.ConfigPath
	if cfgPath == "" {
		wd, _ := os.Getwd()
		cfgPath = config.FindConfigFile(wd)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	engine, err := scoring.NewEngine(scoring.DefaultPillars(), cfg.Scoring.Weights)
	if err != nil {
		log.Fatalf("configure scoring engine: %v", err)
	}

	storeSvc := store.NewService(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiver, err := buildArchiver(ctx, svcCfg)
	if err != nil {
		log.Fatalf("configure archive: %v", err)
	}

	recomputeSvc := recompute.NewService(storeSvc, engine, cfg.Classification, archiver)

	apiMux := http.NewServeMux()
	api.NewHandler(storeSvc, recomputeSvc).RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.APIKeyAuth(svcCfg.APIKey)(api.CORS(apiMux)))
	mux.HandleFunc("GET /healthz", healthHandler(db))

	srv := &http.Server{
		Addr:    ":" + svcCfg.Port,
		Handler: mux,
	}

	// Scheduled sweep: score the month that just closed for every user.
	c := cron.New()
	if _, err := c.AddFunc(svcCfg.RecomputeCron, func() {
		month := time.Now().UTC().AddDate(0, -1, 0)
		completed, failed, err := recomputeSvc.RecomputeAll(context.Background(), month)
		if err != nil {
			log.Printf("scheduled recompute: %v", err)
			return
		}
		log.Printf("scheduled recompute for %s: %d completed, %d failed",
			month.Format("2006-01"), completed, failed)
	}); err != nil {
		log.Fatalf("schedule recompute: %v", err)
	}
	c.Start()
	defer c.Stop()

	go func() {
		log.Printf("starting twealthd on :%s", svcCfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func buildArchiver(ctx context.Context, cfg serviceConfig) (recompute.Archiver, error) {
	switch cfg.ArchiveBackend {
	case "":
		return nil, nil
	case "local":
		return archive.NewArchiver(archive.NewLocalStore(cfg.ArchivePath)), nil
	case "s3":
		s3Store, err := archive.NewS3Store(ctx, archive.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return archive.NewArchiver(s3Store), nil
	case "gcs":
		gcsStore, err := archive.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, err
		}
		return archive.NewArchiver(gcsStore), nil
	default:
		log.Fatalf("unknown archive backend %q", cfg.ArchiveBackend)
		return nil, nil
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
