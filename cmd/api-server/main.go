package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"

	"github.com/opsdeck/backoffice/internal/config"
	"github.com/opsdeck/backoffice/internal/logger"
	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/server"
	"github.com/opsdeck/backoffice/internal/snapshot"
)

func main() {
	dsn := flag.String("dsn", "", "database DSN")
	driver := flag.String("driver", "postgres", "database driver")
	tblPrefix := flag.String("table-prefix", config.Getenv("TABLE_PREFIX", "bo_"), "table prefix (default bo_)")
	addr := flag.String("addr", ":8080", "listen address")
	redisAddr := flag.String("redis", config.Getenv("REDIS_ADDR", "localhost:6379"), "redis address for session state")
	snapshotDir := flag.String("snapshot-dir", os.Getenv("SNAPSHOT_DIR"), "local directory for nightly page snapshots")
	snapshotBucket := flag.String("snapshot-bucket", os.Getenv("SNAPSHOT_BUCKET"), "S3 bucket for nightly page snapshots")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	logger.Set(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var db *sql.DB
	var err error
	var dialect ormdriver.Dialect
	if *driver == "postgres" {
		dialect = ormdriver.PostgresDialect{}
	} else {
		dialect = ormdriver.MySQLDialect{}
	}
	if *dsn != "" {
		db, err = sql.Open(*driver, *dsn)
		if err != nil {
			logger.L.Error("db open", "err", err)
			os.Exit(1)
		}
		if err := config.CheckPrefix(context.Background(), db, dialect, *tblPrefix); err != nil {
			logger.L.Error("prefix check", "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})

	cfg := server.DBConfig{Driver: *driver, DSN: *dsn, TablePrefix: *tblPrefix}
	api := server.New(db, rdb, cfg)

	if db != nil {
		repo := &pagedef.Repo{DB: db, Dialect: dialect, TablePrefix: *tblPrefix}
		dest := snapshotDest(*snapshotDir, *snapshotBucket)
		if dest != nil {
			s := gocron.NewScheduler(time.UTC)
			if _, err := s.Cron("0 3 * * *").Do(func() {
				if err := snapshot.Export(context.Background(), repo, dest); err != nil {
					logger.L.Error("snapshot export", "err", err)
				}
			}); err != nil {
				logger.L.Error("schedule snapshot", "err", err)
			}
			s.StartAsync()
		}
	}

	if *openapi != "" {
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.L.Info("listening", "addr", *addr)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}

func snapshotDest(dir, bucket string) snapshot.Dest {
	if bucket != "" {
		dest, err := snapshot.NewS3(context.Background(), bucket, "pages")
		if err != nil {
			logger.L.Error("s3 snapshot dest", "err", err)
			return nil
		}
		return dest
	}
	if dir != "" {
		return snapshot.LocalDir{Path: dir}
	}
	return nil
}
