// Package demo parses demo command flags and drives the bridge from a
// fixed-rate ticker loop.
package demo

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/worldbridge/internal/bridge"
	"github.com/louisbranch/worldbridge/internal/chain"
	"github.com/louisbranch/worldbridge/internal/indexer"
	entrypoint "github.com/louisbranch/worldbridge/internal/platform/cmd"
	"github.com/louisbranch/worldbridge/internal/storage/sqlite"
	"github.com/louisbranch/worldbridge/internal/telemetry"
)

// Config holds demo command configuration.
type Config struct {
	ToriiURL     string `env:"WORLDBRIDGE_TORII_URL" envDefault:"localhost:8080"`
	KatanaURL    string `env:"WORLDBRIDGE_KATANA_URL" envDefault:"http://localhost:5050"`
	WorldAddress string `env:"WORLDBRIDGE_WORLD_ADDRESS"`
	AccountIndex int    `env:"WORLDBRIDGE_ACCOUNT_INDEX" envDefault:"0"`
	TickRate     int    `env:"WORLDBRIDGE_TICK_HZ" envDefault:"60"`
	DBPath       string `env:"WORLDBRIDGE_DB_PATH"`

	// ActionAddress and SpawnSelector identify the contract entrypoint the
	// demo invokes once the account connects. Both empty disables the call.
	ActionAddress string `env:"WORLDBRIDGE_ACTION_ADDRESS"`
	SpawnSelector string `env:"WORLDBRIDGE_SPAWN_SELECTOR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ToriiURL, "torii", cfg.ToriiURL, "The indexer gRPC address")
	fs.StringVar(&cfg.KatanaURL, "katana", cfg.KatanaURL, "The chain JSON-RPC URL")
	fs.StringVar(&cfg.WorldAddress, "world", cfg.WorldAddress, "The world contract address")
	fs.IntVar(&cfg.AccountIndex, "account", cfg.AccountIndex, "The predeployed account index")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The telemetry database path (empty disables persistence)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run connects both bridge resources and polls them at the configured rate
// until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, "worldbridge-demo", func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	world, err := chain.HexToFelt(cfg.WorldAddress)
	if err != nil {
		return fmt.Errorf("world address: %w", err)
	}

	var emitter *telemetry.Emitter
	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open telemetry store: %w", err)
		}
		defer func() { _ = store.Close() }()
		emitter = telemetry.NewEmitter(store)
	}

	spawn, err := spawnCall(cfg)
	if err != nil {
		return err
	}

	b := bridge.New(bridge.Config{Telemetry: emitter})
	b.ConnectPredeployedAccount(ctx, cfg.KatanaURL, cfg.AccountIndex)
	b.ConnectIndexer(ctx, cfg.ToriiURL, world)

	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	spawned := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		chainEvents, err := b.PollChain(ctx)
		if err != nil {
			return err
		}
		for _, ev := range chainEvents {
			logEvent(ev)
		}

		for _, ev := range b.PollIndexer(ctx) {
			logEvent(ev)
			if _, ok := ev.(bridge.Initialized); ok {
				b.QueryEntities(ctx, indexer.Query{Limit: 100})
				b.SubscribeEntities(ctx, "position", nil)
			}
		}

		if spawn != nil && !spawned && b.AccountConnected() {
			b.QueueTransaction(ctx, []chain.Call{*spawn})
			spawned = true
		}
	}
}

// spawnCall builds the demo's one-shot contract call, or nil when the
// entrypoint is not configured.
func spawnCall(cfg Config) (*chain.Call, error) {
	if cfg.ActionAddress == "" || cfg.SpawnSelector == "" {
		return nil, nil
	}
	to, err := chain.HexToFelt(cfg.ActionAddress)
	if err != nil {
		return nil, fmt.Errorf("action address: %w", err)
	}
	selector, err := chain.HexToFelt(cfg.SpawnSelector)
	if err != nil {
		return nil, fmt.Errorf("spawn selector: %w", err)
	}
	return &chain.Call{To: to, Selector: selector}, nil
}

func logEvent(ev bridge.Event) {
	switch ev := ev.(type) {
	case bridge.Initialized:
		log.Printf("indexer ready")
	case bridge.EntityUpdated:
		for _, model := range ev.Models {
			log.Printf("entity %s model %s updated", ev.EntityID.Hex(), indexer.ModelName(model))
		}
	case bridge.TransactionCompleted:
		log.Printf("transaction %s accepted", ev.Hash.Hex())
	case bridge.TransactionFailed:
		log.Printf("transaction failed: %v", ev.Err)
	}
}
