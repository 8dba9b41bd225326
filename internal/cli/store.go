package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/statemap/internal/config"
	"github.com/aretw0/statemap/pkg/adapters/file"
	"github.com/aretw0/statemap/pkg/adapters/memory"
	redisadapter "github.com/aretw0/statemap/pkg/adapters/redis"
	"github.com/aretw0/statemap/pkg/adapters/sqlite"
	"github.com/aretw0/statemap/pkg/persistence/middleware"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/session"
)

// Backend is an opened diagram store with its optional lock.
type Backend struct {
	Store  ports.DiagramStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store connection, if any.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the store selected by cfg.Driver, encrypting diagrams
// when a key is configured. Only the redis driver provides a distributed
// lock, and only when cfg.Lock is set.
func OpenBackend(cfg config.StoreConfig) (*Backend, error) {
	b, err := openDriver(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return b, nil
	}

	enc := middleware.EncryptionConfig{}
	if enc.ActiveKey, err = middleware.ParseKey(cfg.EncryptionKey); err != nil {
		b.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mw)
	return b, nil
}

func openDriver(cfg config.StoreConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case config.DriverFile, "":
		return &Backend{Store: file.New(cfg.Path)}, nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &Backend{Store: s, close: s.Close}, nil
	case config.DriverRedis:
		opts := []redisadapter.Option{redisadapter.WithTTL(cfg.TTL)}
		if cfg.Prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(cfg.Prefix))
		}
		s := redisadapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		b := &Backend{Store: s, close: s.Close}
		if cfg.Lock {
			b.Locker = redisadapter.NewLocker(s.Client(), cfg.Prefix)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// NewManager wraps the backend in a session manager.
func (b *Backend) NewManager(cfg config.StoreConfig, logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	if cfg.LockTTL > 0 {
		opts = append(opts, session.WithLockTTL(cfg.LockTTL))
	}
	return session.NewManager(b.Store, opts...)
}
