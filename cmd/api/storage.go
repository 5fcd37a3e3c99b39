package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"nawartu/internal/booking"
	"nawartu/internal/db"
	"nawartu/internal/domain/properties"
	"nawartu/internal/domain/pushtokens"
	"nawartu/internal/domain/storage"
	"nawartu/internal/domain/users"
	"nawartu/internal/memstore"

	"go.uber.org/zap"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

// backend is the storage the API runs on, postgres or in-memory.
type backend struct {
	uow        booking.UnitOfWork
	pushTokens pushtokens.Store
	users      users.Store
	properties properties.Store
	ping       func(ctx context.Context) error
	stats      func() any
	close      func()
}

func openBackend(cfg config, logger *zap.SugaredLogger) (*backend, error) {
	switch cfg.storage {
	case storagePostgres:
		pool, err := db.New(db.Config{
			Addr:        cfg.db.addr,
			MaxConns:    int32(cfg.db.maxOpenConns),
			MinConns:    int32(cfg.db.maxIdleConns),
			MaxIdleTime: cfg.db.maxIdleTime,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("database connection pool established")

		c := storage.NewContainer(pool)
		return &backend{
			uow:        c,
			pushTokens: c.PushTokens,
			users:      c.Users,
			properties: c.Properties,
			ping:       pool.Ping,
			stats:      func() any { return pool.Stat() },
			close:      pool.Close,
		}, nil

	case storageMemory:
		m := memstore.New()
		if cfg.db.seedFile != "" {
			if err := seedMemory(m, cfg.db.seedFile); err != nil {
				return nil, err
			}
			logger.Infow("memory store seeded", "file", cfg.db.seedFile)
		}
		return &backend{
			uow:        m,
			pushTokens: m.PushTokens(),
			users:      m.Users(),
			properties: m.Stores().Properties,
			ping:       func(context.Context) error { return nil },
			stats:      func() any { return "memory" },
			close:      func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", cfg.storage, storagePostgres, storageMemory)
}

type seedData struct {
	Properties []properties.Property `json:"properties"`
	Users      []users.User          `json:"users"`
}

// seedMemory loads listings and contacts for local runs.
func seedMemory(m *memstore.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var data seedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	for _, p := range data.Properties {
		m.AddProperty(p)
	}
	for _, u := range data.Users {
		m.AddUser(u)
	}
	return nil
}
