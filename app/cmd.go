package main

import (
	bc "blockmint/blockchain"
	"blockmint/mining"

	"gopkg.in/urfave/cli.v1"
)

var cmds = cli.Commands{
	{
		Name:      "mine",
		Usage:     "Mine marked empty blocks until the chain holds the target count",
		Aliases:   []string{"m"},
		ArgsUsage: " ",
		Action:    cmdMine,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "marker, w",
				Usage: "identity to mark mined blocks with",
			},
			cli.IntFlag{
				Name:  "target, t",
				Value: 1,
				Usage: "number of marked blocks to reach",
			},
			cli.IntFlag{
				Name:  "bits",
				Value: bc.DefaultBits,
				Usage: "difficulty bits, must be a multiple of 4",
			},
			cli.IntFlag{
				Name:  "interval",
				Value: mining.DefaultRecheckInterval,
				Usage: "nonce attempts between head staleness checks",
			},
		},
	},
	{
		Name:      "depth",
		Usage:     "Report whether a transaction nonce is mined and its confirmation depth",
		Aliases:   []string{"d"},
		ArgsUsage: "[nonce]",
		Action:    cmdDepth,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "nonce, n",
				Usage: "transaction nonce to search for",
			},
		},
	},
}
