package cmd

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/redis/rueidis"
	"gorm.io/gorm"

	config "todo-items.com/todo-items/internal/configs"
	"todo-items.com/todo-items/internal/email"
	"todo-items.com/todo-items/internal/queue"
	repository "todo-items.com/todo-items/internal/repositories"
	"todo-items.com/todo-items/internal/security"
	"todo-items.com/todo-items/internal/services"
)

// app holds the dependencies shared by the serve and sweep commands.
type app struct {
	cfg    config.Config
	logger *log.Logger
	db     *gorm.DB
	redis  rueidis.Client

	mailPool        *services.MailPool
	userService     *services.UserService
	todoItemService *services.TodoItemService
	sweepService    *services.SweepService
	tokens          *security.TokenCodec
}

func loadConfig() (config.Config, *log.Logger, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

func newApp() (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	database, err := config.NewDatabaseClient(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		db:     database,
		tokens: security.NewTokenCodec(cfg.SecretKey, time.Duration(cfg.AccessTokenExpireSeconds)*time.Second),
	}

	var lease queue.Lease = queue.NewLocalLease()
	if cfg.RedisAddr != "" {
		a.redis, err = config.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		lease = queue.NewRedisLease(a.redis, cfg.RedisSweepLeaseKey)
	} else {
		logger.Warn("REDIS_ADDR not set, sweep lease is local to this process")
	}

	var sender email.Sender = email.NewLogSender(logger)
	if cfg.MailEnabled() {
		sender = email.NewSMTPSender(email.SMTPOptions{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			User:      cfg.SMTPUser,
			Password:  cfg.SMTPPassword,
			UseTLS:    cfg.SMTPUseTLS,
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
		})
	}

	composer, err := email.NewComposer()
	if err != nil {
		return nil, err
	}

	a.mailPool = services.NewMailPool(sender, cfg.MailWorkers, cfg.MailQueueSize, logger)
	notifier := services.NewMailNotifier(composer, a.mailPool, logger)

	a.userService = services.NewUserService(repository.NewUserRepository(database), notifier)
	a.todoItemService = services.NewTodoItemService(repository.NewTodoItemRepository(database))
	a.sweepService = services.NewSweepService(a.todoItemService, notifier, lease, services.SweepOptions{
		Interval:         time.Duration(cfg.SweepIntervalSeconds) * time.Second,
		LeaseTTL:         time.Duration(cfg.SweepLeaseSeconds) * time.Second,
		DanglingHoursMax: cfg.DanglingHoursMax,
	}, logger)

	return a, nil
}

// close drains queued mail and releases connections.
func (a *app) close(ctx context.Context) {
	a.mailPool.Shutdown(ctx)

	if a.redis != nil {
		a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
