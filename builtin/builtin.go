// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin hosts the native contracts reachable from transactions.
// Each lives at a well-known address derived from its name.
package builtin

import (
	"math/big"

	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/xenv"
)

// RentSender funds the rent balance of an address out of the caller's value
// balance. Implemented by the runtime transaction context.
type RentSender interface {
	SendRent(caller, addr solum.Address, amount *big.Int) error
}

// NativeMethod a native contract method dispatched by calldata selector.
type NativeMethod struct {
	Name string
	Run  func(env *xenv.Environment, rs RentSender, data []byte) []byte
}

// FindNativeCall returns the native method bound to the target address and
// calldata selector, or nil when the target is not a native contract.
func FindNativeCall(to solum.Address, input []byte) *NativeMethod {
	if to != PayRent.Address {
		return nil
	}
	if len(input) < 4 {
		return nil
	}
	return PayRent.methodBySelector(input[:4])
}
