package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/godilite/store-audit/api/v1"
	"github.com/godilite/store-audit/internal/config"
	handler "github.com/godilite/store-audit/internal/grpc"
	"github.com/godilite/store-audit/internal/httpapi"
	"github.com/godilite/store-audit/internal/repository"
	"github.com/godilite/store-audit/internal/scoring"
	"github.com/godilite/store-audit/internal/service"
	"github.com/godilite/store-audit/pkg/cache"
	dbbuilder "github.com/godilite/store-audit/pkg/database"
	grpcsrv "github.com/godilite/store-audit/pkg/grpc/server"
)

type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := loadPolicy(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := scoring.NewEngine(policy)
	if err != nil {
		return nil, fmt.Errorf("scoring engine init failed: %w", err)
	}
	logger.Info("Scoring policy loaded",
		zap.Int("questions", policy.QuestionCount),
		zap.Ints("critical_questions", policy.CriticalQuestions))

	dbPool, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	version, err := migrate(ctx, cfg, dbPool)
	if err != nil {
		dbPool.Close()
		return nil, err
	}
	logger.Info("Database schema up to date", zap.Uint("version", version))

	a := &App{cfg: cfg, logger: logger, dbPool: dbPool}

	repos := repository.NewRepositories(dbPool, cfg.DBDriver)
	opts := []service.Option{service.WithStorageTimeout(cfg.DBTimeout)}

	if cfg.CacheEnabled() {
		a.cache, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
		)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

		if cfg.LockBackend == config.LockBackendRedis {
			opts = append(opts, service.WithLocker(cache.NewLock(a.cache.Client())))
			logger.Info("Distributed store lock enabled")
		}
	}

	auditService := service.NewAuditService(service.Repositories{
		Stores:      repos.Stores,
		Evaluations: repos.Evaluations,
		Reports:     repos.Reports,
	}, engine, logger, opts...)

	var api handler.AuditService = auditService
	if a.cache != nil {
		api = service.NewCachedAuditService(auditService, a.cache, cfg.CacheTTL, logger)
	}

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithLogging(true),
		grpcsrv.WithIdentityHeader(pb.EvaluatorMetadataKey),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcHandlers := handler.NewGRPCHandlers(api, logger, 0)
	a.grpcServer.Register(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterStoreAuditServer(s, grpcHandlers)
	})

	router := httpapi.NewRouter(httpapi.NewHandler(api, logger, 0), logger.Named("http"))
	a.httpServer, err = httpapi.NewServer(router,
		httpapi.WithPort(cfg.HTTPPort),
		httpapi.WithLogger(logger),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return a, nil
}

// RunMigrations applies pending migrations and exits; used by the migrate
// command.
func RunMigrations(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	dbPool, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer dbPool.Close()

	version, err := migrate(ctx, cfg, dbPool)
	if err != nil {
		return err
	}
	logger.Info("Migrations applied", zap.String("driver", cfg.DBDriver), zap.Uint("version", version))
	return nil
}

func loadPolicy(cfg *config.Config) (scoring.Policy, error) {
	if cfg.ScoringPolicyPath == "" {
		return scoring.DefaultPolicy(), nil
	}
	p, err := scoring.LoadPolicy(cfg.ScoringPolicyPath)
	if err != nil {
		return scoring.Policy{}, fmt.Errorf("load scoring policy: %w", err)
	}
	return p, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	opts := []dbbuilder.Option{
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	}
	if cfg.DBDriver == dbbuilder.DriverSQLite {
		// sqlite allows a single writer.
		opts = append(opts, dbbuilder.WithMaxOpenConns(1), dbbuilder.WithMaxIdleConns(1))
	}
	return dbbuilder.New(ctx, opts...)
}

// migrate runs on the application pool for sqlite and on a short-lived
// single-connection pool for postgres.
func migrate(ctx context.Context, cfg *config.Config, appPool *sql.DB) (uint, error) {
	pool := appPool
	if cfg.DBDriver == dbbuilder.DriverPostgres {
		p, err := dbbuilder.New(ctx,
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(cfg.DBPath),
			dbbuilder.WithMaxOpenConns(1),
		)
		if err != nil {
			return 0, fmt.Errorf("migration pool init failed: %w", err)
		}
		defer p.Close()
		pool = p
	}

	version, err := dbbuilder.Migrate(pool, cfg.DBDriver)
	if err != nil {
		return 0, fmt.Errorf("database migration failed: %w", err)
	}
	return version, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")
	a.grpcServer.Drain(pb.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	a.close()

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}
}
