// Package bootstrap wires configuration, infrastructure, adapters, and
// services into a runnable API server and background worker.
package bootstrap

import (
	"context"

	"jobtrack_server/adapter/out/lock"
	"jobtrack_server/adapter/out/mongodb"
	"jobtrack_server/adapter/out/persistence"
	"jobtrack_server/adapter/out/provider"
	"jobtrack_server/config"
	"jobtrack_server/core/port/in"
	"jobtrack_server/core/port/out"
	"jobtrack_server/core/service/application"
	"jobtrack_server/core/service/classify"
	"jobtrack_server/core/service/scan"
	"jobtrack_server/core/service/signal"
	"jobtrack_server/infra/database"
	"jobtrack_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	Apps     out.ApplicationRepository
	Ledger   out.LedgerRepository
	Contacts out.ContactRepository
	Reports  out.ScanReportRepository
	Accounts out.MailAccountRepository
	Archive  out.MessageArchive

	// Outbound adapters
	TxManager  out.TxManager
	Locker     out.ScanLocker
	Provider   *provider.GmailAdapter
	StateStore *persistence.RedisOAuthStateStore

	// Services
	Extractor  *signal.Extractor
	Classifier *classify.Classifier
	Resolver   *application.Resolver
	Scans      in.ScanService
}

// NewDependencies builds the full dependency graph. The returned cleanup
// closes everything that was opened, in reverse order.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Postgres (pgxpool for health probes)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Postgres (sqlx for the repositories)
	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis backs the scan lock and the OAuth state store, both required
	// for correctness, so a failed connection is fatal.
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Redis = redisClient
	cleanups = append(cleanups, func() { redisClient.Close() })

	// MongoDB (optional evidence archive)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed, unresolved evidence archive disabled: %v", err)
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			archive := mongodb.NewArchiveAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := archive.EnsureIndexes(context.Background()); err != nil {
				logger.Warn("Failed to ensure archive indexes: %v", err)
			}
			deps.Archive = archive
		}
	}

	// Repositories
	deps.Apps = persistence.NewApplicationRepository(sqlDB)
	deps.Ledger = persistence.NewLedgerRepository(sqlDB)
	deps.Contacts = persistence.NewContactRepository(sqlDB)
	deps.Reports = persistence.NewScanReportRepository(sqlDB)
	deps.Accounts = persistence.NewMailAccountRepository(sqlDB)
	deps.TxManager = persistence.NewTxManager(sqlDB)
	deps.StateStore = persistence.NewRedisOAuthStateStore(redisClient)

	// Outbound adapters
	deps.Locker = lock.NewScanLocker(redisClient, cfg.ScanLockTTL)
	deps.Provider = provider.NewGmailAdapter(&provider.GmailConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})

	// Services
	deps.Extractor = signal.NewExtractor(&signal.Options{
		ExtraRejectionKeywords:    cfg.ExtraRejectionKeywords,
		ExtraInterviewKeywords:    cfg.ExtraInterviewKeywords,
		ExtraOfferKeywords:        cfg.ExtraOfferKeywords,
		ExtraConfirmationKeywords: cfg.ExtraConfirmationKeywords,
		ExtraATSDomains:           cfg.ExtraATSDomains,
	})
	deps.Classifier = classify.New(deps.Extractor, cfg.ConfidenceThreshold)
	deps.Resolver = application.NewResolver(deps.Apps, cfg.StrictResolution)

	deps.Scans = scan.NewOrchestrator(
		scan.Config{
			DefaultDaysBack:   cfg.ScanDaysBack,
			DefaultMaxResults: cfg.ScanMaxResults,
		},
		scan.Deps{
			Provider:   deps.Provider,
			Accounts:   deps.Accounts,
			Locker:     deps.Locker,
			Tx:         deps.TxManager,
			Apps:       deps.Apps,
			Ledger:     deps.Ledger,
			Contacts:   deps.Contacts,
			Reports:    deps.Reports,
			Archive:    deps.Archive,
			Extractor:  deps.Extractor,
			Classifier: deps.Classifier,
			Resolver:   deps.Resolver,
		},
	)

	logger.Info("Dependencies initialized")
	return deps, cleanup, nil
}

// HealthCheck pings the required backing stores.
func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if err := d.DB.Ping(ctx); err != nil {
		return err
	}
	return d.Redis.Ping(ctx).Err()
}
