package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"blockmint"
	"blockmint/chain"
	"blockmint/mining"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "blockmint"
	cliApp.Usage = "Mining and confirmation agent for a proof-of-work ledger service."
	cliApp.Version = "0.1"
	cliApp.Commands = cmds
	cliApp.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "debug, d",
			Value: 0,
			Usage: "debug-level: 1 for terse, 5 for maximal",
		},
		cli.StringFlag{
			Name:   "server, s",
			EnvVar: "BLOCKMINT_SERVER",
			Usage:  "base URL of the ledger service",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML configuration file",
		},
	}
	cliApp.Before = func(c *cli.Context) error {
		log.SetDebugVisible(c.Int("debug"))
		return nil
	}
	log.ErrFatal(cliApp.Run(os.Args))
}

func newClient(cfg Config) (*blockmint.Client, error) {
	return blockmint.NewClient(cfg.Server,
		blockmint.WithHTTPClient(&http.Client{Timeout: cfg.Timeout.Duration}))
}

// Mine marked empty blocks until the chain holds the target count.
func cmdMine(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	marker := c.String("marker")
	if marker == "" {
		return xerrors.New("please give --marker, the identity to mark blocks with")
	}
	target := c.Int("target")
	if target <= 0 {
		return xerrors.New("--target must be positive")
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	miner := mining.New(cfg.Bits, cfg.Interval)
	orch := mining.NewOrchestrator(client, chain.NewReader(client), miner, mining.Options{
		PoolRetry:     cfg.PoolRetry.Duration,
		SubmitBackoff: cfg.SubmitBackoff.Duration,
	})
	log.Infof("mining marked blocks for %s on %s (bits=%d)", marker, cfg.Server, cfg.Bits)
	if err := orch.Run(ctx, marker, target); err != nil {
		if xerrors.Is(err, context.Canceled) {
			log.Info("mining interrupted")
			return nil
		}
		return err
	}
	attempts, aborts, solved := miner.Stats()
	log.Infof("done: %d hashes, %d stale aborts, %d blocks solved", attempts, aborts, solved)
	return nil
}

// Report whether a transaction nonce is mined and how deep.
func cmdDepth(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	nonce := c.String("nonce")
	if nonce == "" && c.NArg() == 1 {
		nonce = c.Args().First()
	}
	if nonce == "" {
		return xerrors.New("please give --nonce, the transaction nonce to audit")
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	auditor := chain.NewAuditor(chain.NewReader(client))
	report, err := auditor.Depth(ctx, nonce)
	if err != nil {
		return err
	}
	switch report.Status {
	case chain.StatusFound:
		log.Infof("nonce=%s\n\tmined_in_block_index=%d\n\thead_index=%d\n\tconfirmations=%d",
			report.Nonce, report.BlockIndex, report.HeadIndex, report.Confirmations)
	case chain.StatusIndeterminate:
		log.Infof("nonce=%s not seen, but the chain walk was truncated; result is indeterminate",
			report.Nonce)
	default:
		log.Infof("nonce=%s not found in mined blocks (may still be queued or expired)",
			report.Nonce)
	}
	return nil
}
