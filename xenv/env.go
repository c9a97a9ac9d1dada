// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xenv provides the execution environment for native (built-in)
// contract methods.
package xenv

import (
	"github.com/pkg/errors"

	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/state"
)

// BlockContext block context.
type BlockContext struct {
	Beneficiary solum.Address
	Number      uint32
	Time        uint64
	GasLimit    uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     solum.Bytes32
	Origin solum.Address
}

var (
	// ErrOutOfGas returned when the call runs out of its gas budget.
	ErrOutOfGas = errors.New("out of gas")
	// ErrExecutionReverted returned when a Require condition fails.
	ErrExecutionReverted = errors.New("execution reverted")
)

type vmError struct {
	cause error
}

// Environment an env to execute a native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	caller   solum.Address
	gas      uint64
}

// New create a new env.
func New(
	st *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
	caller solum.Address,
	gas uint64,
) *Environment {
	return &Environment{
		state:    st,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		caller:   caller,
		gas:      gas,
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) Caller() solum.Address                   { return env.caller }

// Gas returns the remaining gas budget.
func (env *Environment) Gas() uint64 { return env.gas }

// UseGas consumes gas from the budget, or aborts the call when exhausted.
func (env *Environment) UseGas(gas uint64) {
	if env.gas < gas {
		panic(&vmError{ErrOutOfGas})
	}
	env.gas -= gas
}

// Require reverts the call if cond is false.
func (env *Environment) Require(cond bool) {
	if !cond {
		panic(&vmError{ErrExecutionReverted})
	}
}

// Stop aborts the call with the given vm error.
func (env *Environment) Stop(vmerr error) {
	panic(&vmError{vmerr})
}

// Call runs proc, translating aborts raised through UseGas/Require/Stop into
// the returned error. Other panics propagate.
func (env *Environment) Call(proc func(env *Environment) []byte) (output []byte, err error) {
	defer func() {
		if e := recover(); e != nil {
			if rec, ok := e.(*vmError); ok {
				err = rec.cause
			} else {
				panic(e)
			}
		}
	}()
	output = proc(env)
	return
}
