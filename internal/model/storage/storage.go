package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/entity/user"
	"max.ks1230/travel-finances-bot/internal/logger"

	// postgres driver
	_ "github.com/lib/pq"
	// sqlite driver
	_ "modernc.org/sqlite"
)

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "postgres"

	sqliteDSNTemplate   = "file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	postgresDSNTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"
)

type config interface {
	Driver() string
	Path() string
	Host() string
	Username() string
	Password() string
	Database() string
}

// Storage owns the database handle. Every access goes through ReadTx or
// WriteTx, which commit or roll back on every exit path.
type Storage struct {
	db       *sql.DB
	sb       sq.StatementBuilderType
	readOpts *sql.TxOptions
	writeMu  sync.Mutex
}

func New(ctx context.Context, config config) (*Storage, error) {
	var (
		dsn string
		s   = &Storage{}
	)

	switch config.Driver() {
	case sqliteDriver:
		if err := os.MkdirAll(filepath.Dir(config.Path()), 0o755); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
		dsn = fmt.Sprintf(sqliteDSNTemplate, config.Path())
		s.sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	case postgresDriver:
		dsn = fmt.Sprintf(postgresDSNTemplate,
			config.Username(),
			config.Password(),
			config.Host(),
			config.Database())
		s.sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		s.readOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	default:
		return nil, errors.Errorf("unknown storage driver %s", config.Driver())
	}

	if err := runMigrations(config.Driver(), dsn); err != nil {
		return nil, errors.Wrap(err, "cannot migrate database")
	}

	db, err := sql.Open(config.Driver(), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if config.Driver() == sqliteDriver {
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	s.db = db

	logger.Info("storage ready", zap.String("driver", config.Driver()))
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// ReadTx runs fn inside one consistent read scope.
func (s *Storage) ReadTx(ctx context.Context, fn func(q Queries) error) error {
	return s.inTx(ctx, s.readOpts, func(tx *Tx) error { return fn(tx) })
}

// WriteTx runs fn inside a write transaction. Write transactions never interleave.
func (s *Storage) WriteTx(ctx context.Context, fn func(q Queries) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.inTx(ctx, nil, func(tx *Tx) error { return fn(tx) })
}

func (s *Storage) inTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		txErr := tx.Rollback()
		if txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Error("error when transaction rollback", zap.Error(txErr))
		}
	}()

	if err = fn(&Tx{tx: tx, sb: s.sb}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

// EnsureSettings creates the settings row with defaults on first run.
func (s *Storage) EnsureSettings(ctx context.Context, anchor currency.Code) error {
	def := user.Default(anchor)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.inTx(ctx, nil, func(tx *Tx) error {
		return tx.insertSettingsIfAbsent(ctx, def)
	})
}
