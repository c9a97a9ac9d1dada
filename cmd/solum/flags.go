// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dirFlag = cli.StringFlag{
		Name:  "dir",
		Usage: "directory of the state database",
	}
	heightFlag = cli.Uint64Flag{
		Name:  "height",
		Usage: "block height to evaluate rent at",
	}
	activationFlag = cli.Uint64Flag{
		Name:  "activation",
		Usage: "height the rent rules activated at",
		Value: 1,
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "collect prometheus metrics while the command runs",
	}
)
