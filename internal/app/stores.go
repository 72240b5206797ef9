package app

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/Freeeeeet/placebooking_bot/internal/config"
	"github.com/Freeeeeet/placebooking_bot/internal/repository"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/base"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/memory"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/Freeeeeet/placebooking_bot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Stores набор репозиториев одного хранилища
type Stores struct {
	Tx          ports.TxManager
	Places      ports.PlaceRepo
	Timeslots   ports.TimeslotRepo
	Bookings    ports.BookingRepo
	Connections ports.ConnectionRepo
	Claims      ports.ClaimRepo
	Users       ports.UserRepo
	Settings    ports.SettingsRepo

	close func()
}

// Close освобождает соединения хранилища
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewMemoryStores хранилище в памяти процесса, данные теряются при остановке
func NewMemoryStores(c clock.Clock) *Stores {
	store := memory.New(c.Now)
	return &Stores{
		Tx:          store,
		Places:      store.Places(),
		Timeslots:   store.Timeslots(),
		Bookings:    store.Bookings(),
		Connections: store.Connections(),
		Claims:      store.Claims(),
		Users:       store.Users(),
		Settings:    store.Settings(),
	}
}

// OpenPostgres подключается к Postgres и применяет миграции
func OpenPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to database")

	if err := Migrate(ctx, pool, cfg, logger); err != nil {
		pool.Close()
		return nil, err
	}

	b := base.NewRepository(pool)
	return &Stores{
		Tx:          base.NewTxManager(pool),
		Places:      repository.NewPlaceRepository(b),
		Timeslots:   repository.NewTimeslotRepository(b),
		Bookings:    repository.NewBookingRepository(b),
		Connections: repository.NewConnectionRepository(b),
		Claims:      repository.NewClaimRepository(b),
		Users:       repository.NewUserRepository(b),
		Settings:    repository.NewSettingsRepository(b),
		close:       pool.Close,
	}, nil
}

// Migrate применяет миграции: встроенные, если MIGRATIONS_DIR не задан явно
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) error {
	var source fs.FS
	if cfg.MigrationsDir == config.DefaultMigrationsDir {
		source = migrations.FS
	}
	migrator, err := NewMigrator(pool, source, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Run(ctx)
}
