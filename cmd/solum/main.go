// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/solum-network/solum/metrics"
	"github.com/solum-network/solum/rent"
	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Solum",
		Usage:     "storage rent tooling for Solum state databases",
		Copyright: "2024 The Solum developers",
		Flags: []cli.Flag{
			verbosityFlag,
		},
		Commands: []cli.Command{
			{
				Name:  "migrate",
				Usage: "eagerly seed rent records of all pre-existing accounts",
				Flags: []cli.Flag{
					dirFlag,
					activationFlag,
					verbosityFlag,
					enableMetricsFlag,
				},
				Action: migrateAction,
			},
			{
				Name:  "due",
				Usage: "list accounts due for eviction at a height",
				Flags: []cli.Flag{
					dirFlag,
					heightFlag,
					activationFlag,
					verbosityFlag,
				},
				Action: dueAction,
			},
			{
				Name:      "show",
				Usage:     "show an account's rent record and derived eviction height",
				ArgsUsage: "<address>",
				Flags: []cli.Flag{
					dirFlag,
					heightFlag,
					activationFlag,
					verbosityFlag,
				},
				Action: showAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRent(ctx *cli.Context) (*rent.Rent, *state.State, func(), error) {
	forks, err := parseActivation(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := openDB(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	st := state.New(db)
	return rent.New(st, rent.NewSchedule(), forks), st, func() { db.Close() }, nil
}

func migrateAction(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	r, st, closeDB, err := newRent(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := r.MigrateAll()
	if err != nil {
		return err
	}
	if err := st.Commit(); err != nil {
		return err
	}
	log.Info("migration done", "accounts", n)
	return nil
}

func dueAction(ctx *cli.Context) error {
	initLogger(ctx)
	height, err := parseHeight(ctx)
	if err != nil {
		return err
	}

	r, _, closeDB, err := newRent(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := r.RebuildSchedule(); err != nil {
		return err
	}
	due := r.Schedule().PopDue(height)
	for _, addr := range due {
		fmt.Println(addr)
	}
	log.Info("eviction sweep preview", "height", height, "due", len(due))
	return nil
}

func showAction(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected 1 argument, got %d", ctx.NArg())
	}
	addr, err := solum.ParseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	height, err := parseHeight(ctx)
	if err != nil {
		return err
	}

	r, st, closeDB, err := newRent(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	balance, err := st.GetBalance(addr)
	if err != nil {
		return err
	}
	rentStored, err := st.GetRent(addr)
	if err != nil {
		return err
	}
	lastPaid, err := st.GetRentLastPaid(addr)
	if err != nil {
		return err
	}
	words, err := st.GetStorageWords(addr)
	if err != nil {
		return err
	}
	cost, err := st.CostPerBlock(addr)
	if err != nil {
		return err
	}
	projected, err := r.Balance(addr, height)
	if err != nil {
		return err
	}
	evict, err := r.EvictionBlock(addr)
	if err != nil {
		return err
	}

	fmt.Println("address:        ", addr)
	fmt.Println("balance:        ", balance)
	fmt.Println("rent:           ", rentStored)
	fmt.Println("rentLastPaid:   ", lastPaid)
	fmt.Println("storageWords:   ", words)
	fmt.Println("costPerBlock:   ", cost)
	fmt.Printf("rent @%d:       %v\n", height, projected)
	if evict == solum.NeverEvict {
		fmt.Println("evictionBlock:   never")
	} else {
		fmt.Println("evictionBlock:  ", evict)
	}
	return nil
}
