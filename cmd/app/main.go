package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/adapters/blob"
	"github.com/atvirokodosprendimai/assettrack/internal/adapters/db/sqlstore"
	httpadapter "github.com/atvirokodosprendimai/assettrack/internal/adapters/http"
	rpcadapter "github.com/atvirokodosprendimai/assettrack/internal/adapters/rpcjson"
	"github.com/atvirokodosprendimai/assettrack/internal/application"
	"github.com/atvirokodosprendimai/assettrack/internal/config"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/atvirokodosprendimai/assettrack/internal/supervisor"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func main() {
	root := &cli.Command{
		Name:  "assettrack",
		Usage: "Inventory and asset tracking server and CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to a YAML config file", Sources: cli.EnvVars(config.ConfigPathEnvVar)},
		},
		Commands: []*cli.Command{
			serverCommand(),
			migrateCommand(),
			authCommand(),
			equipmentCommand(),
			itemsCommand(),
			dashboardCommand(),
			uploadsCommand(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"), serverOverrides{})
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run the HTTP API and the ops socket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address, overrides server.addr"},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN, overrides database.dsn"},
			&cli.StringFlag{Name: "rpc-socket", Usage: "ops socket path, overrides server.socket_path"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"), serverOverrides{
				Addr:   c.String("addr"),
				DSN:    c.String("dsn"),
				Socket: c.String("rpc-socket"),
			})
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadServerConfig(c.String("config"))
			if err != nil {
				return err
			}
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDatabase(db)
			version, err := sqlstore.MigrationVersion(ctx, db)
			if err != nil {
				return err
			}
			fmt.Printf("database at version %d\n", version)
			return nil
		},
	}
}

func loadServerConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := sqlstore.Open(sqlstore.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	if err := sqlstore.RunMigrations(ctx, db); err != nil {
		closeDatabase(db)
		return nil, err
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// serverOverrides carries flag values that win over every config layer.
type serverOverrides struct {
	Addr   string
	DSN    string
	Socket string
}

func runServer(ctx context.Context, configPath string, overrides serverOverrides) error {
	cfg, err := loadServerConfig(configPath)
	if err != nil {
		return err
	}
	if overrides.Addr != "" {
		cfg.Server.Addr = overrides.Addr
	}
	if overrides.DSN != "" {
		cfg.Database.DSN = overrides.DSN
	}
	if overrides.Socket != "" {
		cfg.Server.SocketPath = overrides.Socket
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	blobs, err := blob.Open(ctx, blob.Config{
		Driver: cfg.Blob.Driver,
		Root:   cfg.Blob.Root,
		S3: blob.S3Config{
			Bucket:          cfg.Blob.S3.Bucket,
			Region:          cfg.Blob.S3.Region,
			Endpoint:        cfg.Blob.S3.Endpoint,
			Prefix:          cfg.Blob.S3.Prefix,
			AccessKeyID:     cfg.Blob.S3.AccessKeyID,
			SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
			UsePathStyle:    cfg.Blob.S3.UsePathStyle,
		},
	})
	if err != nil {
		return err
	}

	service := application.NewInventoryService(sqlstore.NewRepository(db), blobs,
		application.WithStagingDir(cfg.Uploads.StagingDir))
	if password := cfg.Security.BootstrapAdminPassword; password != "" {
		if err := service.BootstrapAdmin(ctx, cfg.Security.BootstrapAdminUsername, password); err != nil {
			return err
		}
	} else {
		logging.Warn().Msg("no bootstrap admin password configured, skipping admin bootstrap")
	}

	router := httpadapter.NewRouter(service, httpadapter.Options{
		RequireAuth:     cfg.Security.RequireAuth,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitPerMin: cfg.Server.RateLimitPerMin,
		BodyLimitBytes:  cfg.Server.BodyLimitMB << 20,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.WithComponent("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	if cfg.Server.SocketPath != "" {
		tree.AddAPIService(supervisor.NewListenerService("ops-socket", rpcadapter.New(cfg.Server.SocketPath, service)))
	}
	tree.AddMaintenanceService(supervisor.NewStagingSweepService(service,
		cfg.Uploads.SweepInterval, cfg.Uploads.StaleAfter, logging.WithComponent("uploads")))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("socket", cfg.Server.SocketPath).
		Str("db_driver", cfg.Database.Driver).
		Str("blob_driver", blobs.Driver()).
		Msg("server starting")

	err = tree.Serve(ctx)
	if ctx.Err() != nil {
		logging.Info().Msg("server stopped")
		return nil
	}
	return err
}
