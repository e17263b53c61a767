package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const searchKeyPrefix = "search:"

// CacheRepo — встроенный кэш выдачи поиска альтернатив на BadgerDB.
// Используется, когда отдельного Redis нет.
type CacheRepo struct {
	db     *badger.DB
	ttl    time.Duration
	logger logger.Logger
}

type searchEntry struct {
	Query        string               `json:"query"`
	Alternatives []domain.Alternative `json:"alternatives"`
}

// Open открывает базу по пути из конфигурации (или в памяти) и создаёт каталог при необходимости.
func Open(c *cfg.BadgerCfg, ttl time.Duration, log logger.Logger) (*CacheRepo, error) {
	const op = "badgerdb.Open"

	var opts badger.Options
	if c.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(c.Path, 0o755); err != nil {
			return nil, e.Wrap(op, err)
		}
		opts = badger.DefaultOptions(c.Path)
	}
	opts.Logger = &loggerAdapter{logger: log}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &CacheRepo{
		db:     db,
		ttl:    ttl,
		logger: log,
	}, nil
}

func (c *CacheRepo) Close() error {
	return c.db.Close()
}

// Get возвращает закэшированную выдачу. Промах — (nil, false, nil).
func (c *CacheRepo) Get(_ context.Context, query string) ([]domain.Alternative, bool, error) {
	const op = "CacheRepo.Get"

	var entry searchEntry
	err := c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key(query))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(op, err)
	}

	if entry.Query != query {
		return nil, false, nil
	}

	if entry.Alternatives == nil {
		entry.Alternatives = []domain.Alternative{}
	}

	return entry.Alternatives, true, nil
}

// Set сохраняет выдачу с TTL (без TTL, если он не задан).
func (c *CacheRepo) Set(_ context.Context, query string, alternatives []domain.Alternative) error {
	const op = "CacheRepo.Set"

	data, err := json.Marshal(searchEntry{Query: query, Alternatives: alternatives})
	if err != nil {
		return e.Wrap(op, err)
	}

	err = c.db.Update(func(tx *badger.Txn) error {
		entry := badger.NewEntry(key(query), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return tx.SetEntry(entry)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func key(query string) []byte {
	return []byte(searchKeyPrefix + query)
}

// loggerAdapter направляет журнал badger в общий логгер.
type loggerAdapter struct {
	logger logger.Logger
}

func (l *loggerAdapter) Errorf(msg string, items ...any) {
	l.logger.Errorf(fmt.Errorf(msg, items...), "badger")
}

func (l *loggerAdapter) Warningf(msg string, items ...any) {
	l.logger.Warnf(msg, items...)
}

func (l *loggerAdapter) Infof(msg string, items ...any) {
	l.logger.Debugf(msg, items...)
}

func (l *loggerAdapter) Debugf(msg string, items ...any) {
	l.logger.Debugf(msg, items...)
}
