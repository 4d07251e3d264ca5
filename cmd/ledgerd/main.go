package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"depositledger/config"
	"depositledger/core/events"
	"depositledger/core/state"
	"depositledger/native/deposit"
	"depositledger/observability/logging"
	"depositledger/rpc"
	"depositledger/storage"
)

// slogEmitter forwards engine events into the structured log stream.
type slogEmitter struct {
	logger *slog.Logger
}

func (e slogEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	e.logger.Info("ledger event", slog.String("type", evt.EventType()))
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch strings.TrimSpace(cfg.Backend) {
	case config.BackendMemory:
		return storage.NewMemDB(), nil
	case config.BackendBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "ledger.bolt"))
	case config.BackendLevelDB:
		return storage.NewLevelDB(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// dispatchTransfers drains the outbound queue. The external asset-transfer
// protocol sits on the other side of this boundary; the daemon records each
// request and hands it off without ever reporting back into the ledger.
func dispatchTransfers(logger *slog.Logger, queue *deposit.TransferQueue) {
	for request := range queue.Requests() {
		logger.Info("transfer requested",
			slog.String("id", request.ID),
			slog.String("to", request.To),
			slog.String("token", request.Token),
			slog.String("amount", request.Amount.String()),
			slog.Int64("createdAt", request.CreatedAt),
		)
	}
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("LEDGERD_ENV"))
	logger := logging.Setup("ledgerd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	byteCost, err := cfg.ByteCost()
	if err != nil {
		logger.Error("Failed to parse storage byte cost", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	queue := deposit.NewTransferQueue(cfg.TransferQueueSize)
	go dispatchTransfers(logger, queue)

	engine := deposit.NewEngine()
	engine.SetState(state.NewManager(db))
	engine.SetPolicy(deposit.NewStaticTokenPolicy(cfg.WhitelistedTokens))
	engine.SetStorageByteCost(byteCost)
	engine.SetTransfers(queue)
	engine.SetEmitter(slogEmitter{logger: logger})

	server := rpc.NewServer(engine)
	logger.Info("Starting JSON-RPC server",
		slog.String("address", cfg.RPCAddress),
		slog.String("backend", cfg.Backend),
		slog.Int("whitelistedTokens", len(cfg.WhitelistedTokens)),
	)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server terminated", slog.Any("error", err))
		os.Exit(1)
	}
}
