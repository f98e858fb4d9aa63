// Package main provides the entry point for the mempool daemon.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/c2h5oh/datasize"
	"github.com/cometbft/cometbft/libs/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahwlsqja/eth-mempool/node"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "mempoold",
		Short: "Ethereum transaction mempool daemon",
		Long: `mempoold accepts raw EIP-1559 transaction envelopes, validates them
against chain state and holds them in a nonce-ordered, capacity-bounded pool
until a block builder collects them.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile := v.GetString("config"); cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read config file: %w", err)
				}
			}
			config, err := buildConfig(v)
			if err != nil {
				return err
			}
			return run(config)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to a config file (TOML, YAML or JSON)")
	flags.String("state-addr", "", "gRPC address of the state service; empty runs an in-memory ledger")
	flags.Duration("state-timeout", node.DefaultConfig().StateTimeout, "per-call state gateway timeout")
	flags.Uint64("dev-chain-id", node.DefaultConfig().DevChainID, "chain id for the in-memory ledger")
	flags.Uint64("dev-base-fee", node.DefaultConfig().DevBaseFee, "base fee for the in-memory ledger, wei")
	flags.String("max-tx-bytes", node.DefaultConfig().MaxTxBytes.String(), "raw transaction size cap, e.g. 256KB")
	flags.Int("sender-cache", node.DefaultConfig().SenderCacheSize, "recovered-sender cache entries")
	flags.Int("max-pending", node.DefaultConfig().Pool.MaxPending, "pending partition capacity")
	flags.Int("max-queued", node.DefaultConfig().Pool.MaxQueued, "queued partition capacity")
	flags.Int("price-bump", node.DefaultConfig().Pool.PriceBump, "minimum replacement fee bump, percent")
	flags.Bool("metrics", node.DefaultConfig().MetricsEnabled, "enable the prometheus metrics server")
	flags.String("metrics-addr", node.DefaultConfig().MetricsAddr, "metrics server listen address")
	flags.String("log-level", node.DefaultConfig().LogLevel, "log level: debug, info, error or none")

	v.SetEnvPrefix("MEMPOOLD")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func buildConfig(v *viper.Viper) (*node.Config, error) {
	config := node.DefaultConfig()
	config.StateAddr = v.GetString("state-addr")
	config.StateTimeout = v.GetDuration("state-timeout")
	config.DevChainID = v.GetUint64("dev-chain-id")
	config.DevBaseFee = v.GetUint64("dev-base-fee")
	config.SenderCacheSize = v.GetInt("sender-cache")
	config.Pool.MaxPending = v.GetInt("max-pending")
	config.Pool.MaxQueued = v.GetInt("max-queued")
	config.Pool.PriceBump = v.GetInt("price-bump")
	config.MetricsEnabled = v.GetBool("metrics")
	config.MetricsAddr = v.GetString("metrics-addr")
	config.LogLevel = v.GetString("log-level")

	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(v.GetString("max-tx-bytes"))); err != nil {
		return nil, fmt.Errorf("invalid max-tx-bytes: %w", err)
	}
	config.MaxTxBytes = size

	return config, nil
}

func run(config *node.Config) error {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	option, err := log.AllowLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.LogLevel, err)
	}
	logger = log.NewFilter(logger, option)

	n, err := node.NewNode(config, logger)
	if err != nil {
		return err
	}
	if err := n.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	return n.Stop()
}
