package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "github.com/godilite/workforce-intel/api/v1"
	"github.com/godilite/workforce-intel/internal/config"
	handler "github.com/godilite/workforce-intel/internal/grpc"
	httpapi "github.com/godilite/workforce-intel/internal/http"
	"github.com/godilite/workforce-intel/internal/publish"
	"github.com/godilite/workforce-intel/internal/repository"
	"github.com/godilite/workforce-intel/internal/service"
	"github.com/godilite/workforce-intel/internal/source"
	"github.com/godilite/workforce-intel/pkg/cache"
	dbbuilder "github.com/godilite/workforce-intel/pkg/database"
	grpcsrv "github.com/godilite/workforce-intel/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

// Core is what every command needs: the run store and the pipeline that
// writes to it.
type Core struct {
	logger    *zap.Logger
	db        *sql.DB
	publisher *publish.PostgresPublisher

	Repository *repository.SnapshotRepository
	Pipeline   *service.PipelineService
}

func NewCore(ctx context.Context, cfg *config.Config, cols config.Columns, logger *zap.Logger) (*Core, error) {
	db, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithMigrations(repository.Schema...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver), zap.String("path", cfg.DBPath))

	core := &Core{
		logger:     logger,
		db:         db,
		Repository: repository.NewSnapshotRepository(db),
	}

	opts := []service.PipelineOption{service.WithRepository(core.Repository)}

	if cfg.SharePoint.Configured() {
		fetcher, err := source.NewSharePointFetcher(ctx, cfg.SharePoint, logger)
		if err != nil {
			core.Close()
			return nil, fmt.Errorf("sharepoint init failed: %w", err)
		}
		opts = append(opts, service.WithFetcher(fetcher))
		logger.Info("SharePoint fetcher configured", zap.String("site", cfg.SharePoint.SiteURL))
	}

	if cfg.PostgresURL != "" {
		pub, err := publish.NewPostgresPublisher(ctx, cfg.PostgresURL, cfg.PostgresSchema, logger)
		if err != nil {
			core.Close()
			return nil, fmt.Errorf("postgres publisher init failed: %w", err)
		}
		core.publisher = pub
		opts = append(opts, service.WithPublisher(pub))
		logger.Info("Postgres publisher configured", zap.String("schema", cfg.PostgresSchema))
	}

	core.Pipeline = service.NewPipelineService(cfg, cols, source.NewLoader(logger), logger, opts...)
	return core, nil
}

func (c *Core) Close() {
	if c.publisher != nil {
		c.publisher.Close()
	}
	if err := c.db.Close(); err != nil {
		c.logger.Error("database shutdown error", zap.Error(err))
	}
}

// App serves the query API over gRPC and HTTP.
type App struct {
	logger     *zap.Logger
	core       *Core
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *http.Server
	httpLis    net.Listener
}

func NewApp(ctx context.Context, cfg *config.Config, cols config.Columns, logger *zap.Logger) (*App, error) {
	core, err := NewCore(ctx, cfg, cols, logger)
	if err != nil {
		return nil, err
	}
	a := &App{logger: logger, core: core}

	var cacher handler.Cacher
	if cfg.RedisAddr != "" {
		a.cache, err = cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacher = a.cache
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("Cache disabled")
	}

	query := service.NewQueryService(core.Repository, core.Pipeline, cfg.WorkdayHours, logger)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithUnaryInterceptors(grpcsrv.AdminKeyInterceptor(cfg.AdminAPIKey, pb.Dashboard_Rebuild_FullMethodName)),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	a.grpcServer = grpcServer

	grpcHandlers := handler.NewDashboardHandlers(query, cacher, logger, cfg.CacheTTL)
	grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterDashboardServer(s, grpcHandlers)
	})

	a.httpLis, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		a.close()
		return nil, fmt.Errorf("failed to listen on http port %d: %w", cfg.HTTPPort, err)
	}
	a.httpServer = &http.Server{
		Handler: httpapi.Router(httpapi.RouterConfig{
			CORSOrigins: cfg.CORSOrigins,
			AdminKey:    cfg.AdminAPIKey,
		}, query, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) GRPCAddr() net.Addr { return a.grpcServer.Addr() }
func (a *App) HTTPAddr() net.Addr { return a.httpLis.Addr() }

// Run starts both servers and blocks until ctx is cancelled, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	httpErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", zap.String("addr", a.httpLis.Addr().String()))
		if err := a.httpServer.Serve(a.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
		close(httpErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-httpErr:
		if ok {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	a.logger.Info("application shutting down")
	a.grpcServer.SetServiceHealth(pb.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("grpc shutdown error", zap.Error(err))
	}
	a.close()

	if runErr == nil {
		a.logger.Info("graceful shutdown completed successfully")
	}
	return runErr
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	a.core.Close()
}
