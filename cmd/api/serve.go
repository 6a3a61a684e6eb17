package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/docadmin/internal/admin"
	"github.com/abduss/docadmin/internal/auth"
	"github.com/abduss/docadmin/internal/config"
	"github.com/abduss/docadmin/internal/file"
	"github.com/abduss/docadmin/internal/presigned"
	"github.com/abduss/docadmin/internal/server"
	"github.com/abduss/docadmin/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type recordStore interface {
	Insert(ctx context.Context, rec *file.Record) error
	Update(ctx context.Context, rec *file.Record) error
	Get(ctx context.Context, id int64) (*file.Record, error)
	List(ctx context.Context) ([]*file.Record, error)
	Delete(ctx context.Context, id int64) (*file.Record, error)
}

func (a *app) serve(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log := a.cfg, a.log
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, dbCheck, closeDB, err := a.openRecordStore(ctx, migrate)
	if err != nil {
		return err
	}
	defer closeDB()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}
	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	links := presigned.NewService(minioClient, cfg.MinIO.Bucket, cfg.Links)
	uploader := file.NewUploader(file.NewMinIOStore(minioClient), cfg.MinIO.Bucket, cfg.Upload)
	fileService := file.NewService(repo, uploader, cfg.Upload,
		file.WithLogger(log),
		file.WithLinkInvalidator(links),
	)

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		Logger:       log,
		AuthService:  auth.NewService(cfg.Auth),
		AdminHandler: admin.NewHandler(fileService, admin.NewRenderer(links), cfg.Upload.MaxFileSize, log),
		Checks: []server.ReadinessCheck{
			dbCheck,
			{Component: "minio", Check: storage.BucketReady(minioClient, cfg.MinIO.Bucket)},
		},
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("docadmin API listening", zap.String("address", cfg.Server.Address()),
			zap.String("database", cfg.Database.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *app) openRecordStore(ctx context.Context, migrate bool) (recordStore, server.ReadinessCheck, func(), error) {
	cfg := a.cfg.Database

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, server.ReadinessCheck{}, nil, fmt.Errorf("open sqlite: %w", err)
		}
		repo := file.NewGormRepository(db)
		if err := repo.AutoMigrate(ctx); err != nil {
			_ = storage.CloseSQLite(db)
			return nil, server.ReadinessCheck{}, nil, err
		}
		check := server.ReadinessCheck{Component: "sqlite", Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}}
		return repo, check, func() { _ = storage.CloseSQLite(db) }, nil

	default:
		if migrate {
			result, err := storage.Migrate(cfg.Postgres.MigrateURL())
			if err != nil {
				return nil, server.ReadinessCheck{}, nil, err
			}
			a.log.Info("database schema ready", zap.Uint("version", result.Version), zap.Bool("changed", result.Changed))
		}
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, server.ReadinessCheck{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		check := server.ReadinessCheck{Component: "postgres", Check: pool.Ping}
		return file.NewRepository(pool), check, pool.Close, nil
	}
}
