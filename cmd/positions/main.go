package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	sol "github.com/gagliardetto/solana-go"
	"github.com/web3-frozen/whirlpool-monitor/internal/config"
	"github.com/web3-frozen/whirlpool-monitor/internal/solana"
)

// Lists the open Whirlpool positions of a wallet:
//
//	positions <owner-address>
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	ownerArg := cfg.PositionsOwner
	if len(os.Args) > 1 {
		ownerArg = os.Args[1]
	}
	if ownerArg == "" {
		logger.Error("owner address is required (argument or POSITIONS_OWNER)")
		os.Exit(2)
	}
	owner, err := sol.PublicKeyFromBase58(ownerArg)
	if err != nil {
		logger.Error("invalid owner address", "owner", ownerArg, "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := solana.NewClient(cfg.SolanaRPCURL)
	positions, err := client.PositionsForOwner(ctx, owner)
	if err != nil {
		logger.Error("failed to fetch positions", "owner", owner.String(), "rpc", cfg.SolanaRPCURL, "error", err)
		os.Exit(1)
	}

	for _, p := range positions {
		logger.Info("position",
			"address", p.Address,
			"whirlpool", p.Whirlpool,
			"position_mint", p.PositionMint,
			"liquidity", p.Liquidity.String(),
			"tick_lower", p.TickLower,
			"tick_upper", p.TickUpper,
			"fee_owed_a", p.FeeOwedA,
			"fee_owed_b", p.FeeOwedB,
		)
	}
	logger.Info("done", "owner", owner.String(), "positions", len(positions))
}
