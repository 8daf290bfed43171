package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

var ErrBadgerPathRequired = errors.New("badger path is required for a persistent database")

type BadgerOptions struct {
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// badgerLogger adapts slog to the badger logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (that *badgerLogger) Errorf(format string, args ...interface{}) {
	that.logger.Error(fmt.Sprintf(format, args...))
}

func (that *badgerLogger) Warningf(format string, args ...interface{}) {
	that.logger.Warn(fmt.Sprintf(format, args...))
}

func (that *badgerLogger) Infof(format string, args ...interface{}) {
	that.logger.Info(fmt.Sprintf(format, args...))
}

func (that *badgerLogger) Debugf(format string, args ...interface{}) {
	that.logger.Debug(fmt.Sprintf(format, args...))
}

// NewBadger - opens an embedded badger database, in memory or on disk.
func NewBadger(opts BadgerOptions) (*badger.DB, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, ErrBadgerPathRequired
		}

		if err := os.MkdirAll(opts.Path, 0o750); err != nil {
			return nil, fmt.Errorf("can't create badger directory %s: %w", opts.Path, err)
		}

		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	badgerOpts = badgerOpts.WithNumVersionsToKeep(1)

	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(&badgerLogger{logger: opts.Logger.With("component", "badger")})
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("can't open badger database: %w", err)
	}

	return db, nil
}
