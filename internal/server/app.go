// Package server initializes and runs the credauth server: it selects the
// credential store, runs migrations, wires the auth service and serves gRPC
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/credauth/internal/logging"
	"github.com/dmitrijs2005/credauth/internal/server/audit"
	"github.com/dmitrijs2005/credauth/internal/server/auth"
	"github.com/dmitrijs2005/credauth/internal/server/config"
	"github.com/dmitrijs2005/credauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credauth/internal/server/services"

	gs "github.com/dmitrijs2005/credauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
}

// NewApp opens the configured store and builds the service graph. The
// returned App owns the database handle.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)

	switch c.StoreKind {
	case config.StorePostgres:
		var err error
		db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
	default:
		rm = repomanager.NewInMemoryRepositoryManager()
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	sink, err := newAuditSink(ctx, c)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("audit init error: %w", err)
	}

	as := services.NewAuthService(db, rm,
		auth.NewBcryptHasher(c.BcryptCost),
		auth.NewJWTIssuer([]byte(c.SecretKey)),
		logger,
		services.WithPolicy(c.Policy()),
		services.WithTokenTTL(c.TokenTTL),
		services.WithAuditSink(sink),
	)

	logger.Info(ctx, "app initialized", "store", c.StoreKind, "audit", c.S3Bucket != "",
		"lockout_threshold", c.LockoutThreshold, "lockout_window", c.LockoutWindow.String())

	return &App{config: c, logger: logger, db: db, authService: as}, nil
}

func newAuditSink(ctx context.Context, c *config.Config) (audit.Sink, error) {
	if c.S3Bucket == "" {
		return audit.NopSink{}, nil
	}
	return audit.NewS3Sink(ctx, audit.S3Options{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeDB(app.db)
	app.logger.Info(ctx, "App stopped")
}
