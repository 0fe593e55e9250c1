// Package app assembles the database, the ledger controller, the reminder
// scheduler and the services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"cashbook/internal/config"
	"cashbook/internal/database"
	"cashbook/internal/logger"
	"cashbook/internal/reminder"
	"cashbook/internal/services"
)

// App is a fully wired instance of the ledger.
type App struct {
	Config     *config.Config
	DB         *database.Manager
	Controller *services.Controller
	Scheduler  *reminder.Scheduler
	Services   *services.Registry

	closers []func() error
}

// Open connects to the configured database, applies migrations and loads
// the ledger. The scheduler is created but not started; Restore has already
// loaded its pending tasks. Scheduler is nil when reminders are disabled.
func Open(ctx context.Context, cfg *config.Config, dbConfig *database.Config) (*App, error) {
	log := logger.Get()

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	a := &App{Config: cfg, DB: dbManager}
	a.closers = append(a.closers, dbManager.Close)

	if err := dbManager.RunMigrations(); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	ctrl, err := services.NewController(ctx, database.NewSlotRepository(db),
		services.WithLocation(cfg.Location),
		services.WithCreatedBy(cfg.CreatedBy),
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	a.Controller = ctrl

	var scheduler services.ReminderScheduler
	if cfg.RemindersEnabled {
		a.Scheduler = reminder.New(reminder.NewGormStore(db), a.notifier())
		n, err := a.Scheduler.Restore(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		log.Infow("reminders restored", "pending", n)
		scheduler = a.Scheduler
	}

	a.Services = services.NewRegistry(ctrl, scheduler, db)
	return a, nil
}

// notifier builds the reminder delivery chain: the log always, Telegram and
// AMQP when configured. A broker that cannot be reached is skipped.
func (a *App) notifier() reminder.Notifier {
	log := logger.Named("reminder")
	chain := reminder.MultiNotifier{reminder.NewLogNotifier()}

	if a.Config.TelegramToken != "" && a.Config.TelegramChatID != "" {
		chain = append(chain, reminder.NewTelegramNotifier(reminder.TelegramAPI, a.Config.TelegramToken, a.Config.TelegramChatID))
		log.Info("Telegram reminders enabled")
	}

	if a.Config.AMQPURL != "" {
		pub, err := reminder.DialAMQP(a.Config.AMQPURL, a.Config.AMQPExchange, a.Config.AMQPQueue)
		if err != nil {
			log.Warnw("AMQP reminders disabled", "error", err)
		} else {
			chain = append(chain, pub)
			a.closers = append(a.closers, pub.Close)
			log.Infow("AMQP reminders enabled", "exchange", a.Config.AMQPExchange, "queue", a.Config.AMQPQueue)
		}
	}
	return chain
}

// Close releases the broker connection and the database, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
