// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/solum-network/solum/kv"
	"github.com/solum-network/solum/solum"
)

func initLogger(ctx *cli.Context) {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)))
}

func openDB(ctx *cli.Context) (*kv.LevelDB, error) {
	dir := ctx.String(dirFlag.Name)
	if dir == "" {
		return nil, errors.New("--dir is required")
	}
	db, err := kv.New(dir, kv.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open state database")
	}
	return db, nil
}

func parseHeight(ctx *cli.Context) (uint32, error) {
	h := ctx.Uint64(heightFlag.Name)
	if h > uint64(solum.NeverEvict) {
		return 0, fmt.Errorf("height %d out of range", h)
	}
	return uint32(h), nil
}

func parseActivation(ctx *cli.Context) (solum.ForkConfig, error) {
	h := ctx.Uint64(activationFlag.Name)
	if h == 0 || h > uint64(solum.NeverEvict) {
		return solum.ForkConfig{}, fmt.Errorf("activation height %d out of range", h)
	}
	return solum.ForkConfig{RENT: uint32(h)}, nil
}
