// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime orchestrates the state-mutating operations around the rent
// engine: every handler settles rent as a synchronous side effect, and the
// per-transaction substate drives end-of-transaction cleanup.
package runtime

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/solum-network/solum/rent"
	"github.com/solum-network/solum/state"
	"github.com/solum-network/solum/xenv"
)

// ErrInsufficientBalance returned when the caller's value balance cannot
// cover a transfer or rent conversion. The failing operation reverts its own
// effect only.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrRentInactive returned when a rent-only operation is invoked below the
// activation height, where the operation does not exist yet.
var ErrRentInactive = errors.New("rent not active")

// Runtime executes operations against a state at a given block context.
type Runtime struct {
	state    *state.State
	rent     *rent.Rent
	blockCtx *xenv.BlockContext
	logger   log.Logger
}

// New create a runtime instance.
func New(st *state.State, rentEngine *rent.Rent, blockCtx *xenv.BlockContext) *Runtime {
	return &Runtime{
		state:    st,
		rent:     rentEngine,
		blockCtx: blockCtx,
		logger:   log.New("pkg", "runtime"),
	}
}

func (rt *Runtime) State() *state.State              { return rt.state }
func (rt *Runtime) Rent() *rent.Rent                 { return rt.rent }
func (rt *Runtime) BlockContext() *xenv.BlockContext { return rt.blockCtx }

// FinalizeBlock performs the conservative block-boundary sweep: it drains
// the eviction schedule up to the current height and permanently removes
// every account that is due, whether or not any transaction touched it.
func (rt *Runtime) FinalizeBlock() error {
	if !rt.rent.Active(rt.blockCtx.Number) {
		return nil
	}
	due := rt.rent.Schedule().PopDue(rt.blockCtx.Number)
	for _, addr := range due {
		isDue, err := rt.rent.Due(addr, rt.blockCtx.Number)
		if err != nil {
			return err
		}
		if !isDue {
			// the entry went stale; put it back where it belongs
			if err := rt.rent.Reschedule(addr); err != nil {
				return err
			}
			continue
		}
		rt.logger.Debug("evicting depleted account", "addr", addr, "height", rt.blockCtx.Number)
		rt.rent.Evict(addr)
	}
	return nil
}
