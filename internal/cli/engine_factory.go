package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"

	backend "github.com/redis/go-redis/v9"

	"github.com/cstaulbee/quickscope"
	"github.com/cstaulbee/quickscope/internal/adapters/file"
	"github.com/cstaulbee/quickscope/internal/adapters/memory"
	redisadapter "github.com/cstaulbee/quickscope/internal/adapters/redis"
	"github.com/cstaulbee/quickscope/internal/logging"
	"github.com/cstaulbee/quickscope/pkg/persistence/middleware"
	"github.com/cstaulbee/quickscope/pkg/ports"
	"github.com/cstaulbee/quickscope/pkg/session"
)

// CreateEngine initializes an engine with standard CLI conventions:
// flows loaded from a directory, the store backend selected by flags,
// and debug hooks when requested. The returned closer releases the
// store backend, if it holds connections.
func CreateEngine(opts RunOptions, logger *slog.Logger) (*quickscope.Engine, func() error, error) {
	return CreateEngineWith(opts, logger)
}

// CreateEngineWith is CreateEngine with extra engine options appended,
// used by the server to layer metrics hooks on the CLI wiring.
func CreateEngineWith(opts RunOptions, logger *slog.Logger, extra ...quickscope.Option) (*quickscope.Engine, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, locker, closer, err := createStore(opts)
	if err != nil {
		return nil, nil, err
	}
	store, err = wrapStore(store, opts)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []quickscope.Option{
		quickscope.WithLogger(logger),
		quickscope.WithStateStore(store),
	}
	if locker != nil {
		engineOpts = append(engineOpts, quickscope.WithLocker(locker))
	}
	if opts.Debug {
		engineOpts = append(engineOpts, quickscope.WithLifecycleHooks(createDebugHooks(logger)))
	}
	engineOpts = append(engineOpts, extra...)

	return quickscope.New(file.NewSource(opts.FlowDir), engineOpts...), closer, nil
}

func createStore(opts RunOptions) (session.StateStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch opts.Store {
	case "", "memory":
		return memory.NewStore(), nil, noop, nil
	case "file":
		path := opts.StorePath
		if path == "" {
			path = filepath.Join(opts.FlowDir, ".quickscope", "sessions")
		}
		return file.NewStore(path), nil, noop, nil
	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPass,
			DB:       opts.RedisDB,
		})
		locker := redisadapter.NewLocker(client, "quickscope:session:")
		return redisadapter.NewFromClient(client), locker, client.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", opts.Store)
	}
}

// wrapStore layers the persistence middleware selected by flags over
// the raw store: PII masking first, then at-rest encryption.
func wrapStore(store session.StateStore, opts RunOptions) (session.StateStore, error) {
	var mws []middleware.Middleware

	if len(opts.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(opts.PIIPatterns))
	}
	if opts.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(opts.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("encryption key must decode to 32 bytes, got %d", len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}

	if len(mws) == 0 {
		return store, nil
	}
	return middleware.Chain(store, mws...), nil
}
