package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	appidentity "github.com/yatube/backend/internal/application/identity"
	appposts "github.com/yatube/backend/internal/application/posts"
	"github.com/yatube/backend/internal/infrastructure/auth"
	"github.com/yatube/backend/internal/infrastructure/config"
	"github.com/yatube/backend/internal/infrastructure/logger"
	"github.com/yatube/backend/internal/infrastructure/persistence"
	"github.com/yatube/backend/internal/interfaces/cli"
	"go.uber.org/zap"
)

func main() {
	// A .env file next to the binary is optional
	_ = godotenv.Load()

	root := cli.NewRootCommand(open)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// open wires the services the admin commands need from config.toml and the environment
func open(_ context.Context) (*cli.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Output = "stderr"
	logCfg.TimeFormat = "2006-01-02 15:04:05"
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	// Deleting a user revokes their sessions, which needs the server's blacklist
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var closeRedis func() error
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, deleted users keep their sessions until expiry", zap.Error(err))
		} else {
			blacklist = redisBlacklist
			closeRedis = redisBlacklist.Close
		}
	}

	userRepo := persistence.NewGormUserRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)

	app := &cli.App{
		Users:  appidentity.NewUserService(userRepo, blacklist, cfg.JWT.Expiration, log),
		Groups: appposts.NewGroupService(groupRepo, log),
	}
	cleanup := func() {
		if closeRedis != nil {
			_ = closeRedis()
		}
		if err := db.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
		_ = log.Sync()
	}
	return app, cleanup, nil
}
