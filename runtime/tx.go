// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/solum-network/solum/solum"
)

// Tx is the per-transaction execution context. It carries the touched-account
// substate and a state checkpoint, so that the finalizer's input is explicit
// and a failed transaction can be dropped cleanly.
//
// Operations within a transaction execute strictly in order; rent settlement
// and schedule updates are synchronous side effects of the operation that
// triggered them.
type Tx struct {
	rt         *Runtime
	touched    map[solum.Address]struct{}
	checkpoint int
	done       bool
}

// BeginTx opens a transaction context at a fresh state checkpoint.
func (rt *Runtime) BeginTx() *Tx {
	return &Tx{
		rt:         rt,
		touched:    make(map[solum.Address]struct{}),
		checkpoint: rt.state.NewCheckpoint(),
	}
}

func (tx *Tx) touch(addr solum.Address) {
	tx.touched[addr] = struct{}{}
}

// Touched returns the touched-account set in address order.
func (tx *Tx) Touched() []solum.Address {
	addrs := make([]solum.Address, 0, len(tx.touched))
	for addr := range tx.touched {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}

func (tx *Tx) number() uint32 {
	return tx.rt.blockCtx.Number
}

func (tx *Tx) rentActive() bool {
	return tx.rt.rent.Active(tx.number())
}

// RentBalance reads the rent balance of addr, projected to the current
// height. Read-only, same cost class as a balance read.
func (tx *Tx) RentBalance(addr solum.Address) (*big.Int, error) {
	return tx.rt.rent.Balance(addr, tx.number())
}

// SendRent converts amount of the caller's value balance into rent of addr.
// The conversion is one-way: rent is never spendable again. The operation
// does not exist below the activation height.
func (tx *Tx) SendRent(caller, addr solum.Address, amount *big.Int) error {
	if !tx.rentActive() {
		return ErrRentInactive
	}
	balance, err := tx.rt.state.GetBalance(caller)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := tx.rt.state.SetBalance(caller, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	if err := tx.rt.rent.Add(addr, amount, tx.number()); err != nil {
		return err
	}
	tx.touch(caller)
	tx.touch(addr)
	return nil
}

// SetStorage writes a storage slot of addr, settling rent first. A write to
// a yet-untouched account creates its rent record with the stipend. The
// account's storage word count follows the zero<->non-zero transition of the
// slot.
func (tx *Tx) SetStorage(addr solum.Address, key, value solum.Bytes32) error {
	if tx.rentActive() {
		if err := tx.rt.rent.Settle(addr, tx.number()); err != nil {
			return err
		}
	}
	if err := tx.rt.state.SetStorage(addr, key, value); err != nil {
		return err
	}
	if tx.rentActive() {
		// the write may have changed the per-block cost
		if err := tx.rt.rent.Reschedule(addr); err != nil {
			return err
		}
	}
	tx.touch(addr)
	return nil
}

// Transfer moves value from sender to recipient, settling the recipient's
// rent first. A fresh recipient is created with the rent stipend. Zero-value
// transfers leave rent untouched.
func (tx *Tx) Transfer(sender, recipient solum.Address, amount *big.Int) error {
	senderBalance, err := tx.rt.state.GetBalance(sender)
	if err != nil {
		return err
	}
	if senderBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	// settle only once the transfer is sure to happen, so a failed one
	// leaves no rent record behind
	if tx.rentActive() && amount.Sign() > 0 {
		if err := tx.rt.rent.Settle(recipient, tx.number()); err != nil {
			return err
		}
	}
	if err := tx.rt.state.SetBalance(sender, new(big.Int).Sub(senderBalance, amount)); err != nil {
		return err
	}
	recipientBalance, err := tx.rt.state.GetBalance(recipient)
	if err != nil {
		return err
	}
	if err := tx.rt.state.SetBalance(recipient, new(big.Int).Add(recipientBalance, amount)); err != nil {
		return err
	}
	if tx.rentActive() && amount.Sign() > 0 {
		if err := tx.rt.rent.Reschedule(recipient); err != nil {
			return err
		}
	}
	tx.touch(sender)
	tx.touch(recipient)
	return nil
}

// Create sets code at addr. The rent balance becomes the larger of the
// stipend and any rent already paid to the address, and rent is stamped
// settled at the current height.
func (tx *Tx) Create(addr solum.Address, code []byte) error {
	if tx.rentActive() {
		if err := tx.rt.rent.Settle(addr, tx.number()); err != nil {
			return err
		}
		if err := tx.rt.rent.ApplyStipend(addr, tx.number()); err != nil {
			return err
		}
	}
	if err := tx.rt.state.SetCode(addr, code); err != nil {
		return err
	}
	if tx.rentActive() {
		// code size feeds the per-block cost
		if err := tx.rt.rent.Reschedule(addr); err != nil {
			return err
		}
	}
	tx.touch(addr)
	return nil
}

// Finalize performs the end-of-transaction sweep over the touched-account
// set: every touched account that is empty or at/past its eviction height is
// permanently removed. This is the only place rent records die.
func (tx *Tx) Finalize() error {
	if tx.done {
		return nil
	}
	tx.done = true
	for _, addr := range tx.Touched() {
		exists, err := tx.rt.state.Exists(addr)
		if err != nil {
			return err
		}
		if !exists {
			// empty account cleanup, pre-existing behavior
			tx.rt.state.Delete(addr)
			tx.rt.rent.Schedule().Remove(addr)
			continue
		}
		if !tx.rentActive() {
			continue
		}
		isDue, err := tx.rt.rent.Due(addr, tx.number())
		if err != nil {
			return err
		}
		if isDue {
			tx.rt.rent.Evict(addr)
		}
	}
	return nil
}

// Revert drops every effect of the transaction and resynchronizes the
// schedule entries of the touched accounts, since the schedule is not
// checkpointed with the state.
func (tx *Tx) Revert() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.rt.state.RevertTo(tx.checkpoint)
	for _, addr := range tx.Touched() {
		if err := tx.rt.rent.Reschedule(addr); err != nil {
			return err
		}
	}
	return nil
}
