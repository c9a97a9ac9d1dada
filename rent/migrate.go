// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rent

import (
	"math/big"

	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/state"
)

// migrate seeds a pre-existing account with enough rent to cover its current
// per-block cost for the migration window, stamped settled at the activation
// height. Called lazily from Settle, or eagerly by MigrateAll; both produce
// the same record.
func (r *Rent) migrate(addr solum.Address) error {
	cost, err := r.state.CostPerBlock(addr)
	if err != nil {
		return err
	}
	seed := new(big.Int).Mul(cost, bigMigrationWindow)
	return r.state.SetRentRecord(addr, seed, r.forks.RENT)
}

// MigrateAccount applies the activation migration to addr if it is a
// pre-existing account never touched under the rent rules. Applying it to an
// already-migrated account is a no-op. It returns whether migration happened.
func (r *Rent) MigrateAccount(addr solum.Address) (bool, error) {
	lastPaid, err := r.state.GetRentLastPaid(addr)
	if err != nil {
		return false, err
	}
	if lastPaid != 0 {
		return false, nil
	}
	exists, err := r.state.Exists(addr)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := r.migrate(addr); err != nil {
		return false, err
	}
	return true, r.Reschedule(addr)
}

// MigrateAll eagerly migrates every persisted account, sweeping the account
// bucket once. The caller commits the state afterwards. It returns the
// number of accounts migrated.
func (r *Rent) MigrateAll() (int, error) {
	var addrs []solum.Address
	if err := r.state.IterateAccounts(func(addr solum.Address, acc *state.Account) bool {
		if acc.RentLastPaid == 0 {
			addrs = append(addrs, addr)
		}
		return true
	}); err != nil {
		return 0, err
	}

	n := 0
	for _, addr := range addrs {
		migrated, err := r.MigrateAccount(addr)
		if err != nil {
			return n, err
		}
		if migrated {
			n++
		}
	}
	return n, nil
}

// RebuildSchedule reconstructs the eviction schedule from the persisted
// accounts. The schedule is derived state, so the result is identical to an
// incrementally maintained one.
func (r *Rent) RebuildSchedule() error {
	var addrs []solum.Address
	if err := r.state.IterateAccounts(func(addr solum.Address, _ *state.Account) bool {
		addrs = append(addrs, addr)
		return true
	}); err != nil {
		return err
	}
	for _, addr := range addrs {
		if err := r.Reschedule(addr); err != nil {
			return err
		}
	}
	return nil
}
