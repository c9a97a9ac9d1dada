// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/solum-network/solum/solum"
	"github.com/solum-network/solum/xenv"
)

// payRentContract converts value from the caller into rent of a beneficiary
// account. The conversion is one-way.
type payRentContract struct {
	Address solum.Address
}

// PayRent the pay-rent native contract.
var PayRent = &payRentContract{
	Address: solum.BytesToAddress([]byte("pay-rent")),
}

var (
	payRentArgs = abi.Arguments{
		{Name: "addr", Type: mustNewType("address")},
		{Name: "amount", Type: mustNewType("uint256")},
	}
	payRentSelector = crypto.Keccak256([]byte("payRent(address,uint256)"))[:4]
)

func mustNewType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

// PackPayRent encodes a payRent call for the given beneficiary and amount.
func (p *payRentContract) PackPayRent(addr solum.Address, amount *big.Int) ([]byte, error) {
	data, err := payRentArgs.Pack(common.Address(addr), amount)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(nil), payRentSelector...), data...), nil
}

func (p *payRentContract) methodBySelector(selector []byte) *NativeMethod {
	if string(selector) != string(payRentSelector) {
		return nil
	}
	return &NativeMethod{
		Name: "payRent",
		Run:  runPayRent,
	}
}

func runPayRent(env *xenv.Environment, rs RentSender, data []byte) []byte {
	env.UseGas(solum.PayRentGas)

	unpacked, err := payRentArgs.Unpack(data)
	env.Require(err == nil && len(unpacked) == 2)

	addr, okAddr := unpacked[0].(common.Address)
	amount, okAmount := unpacked[1].(*big.Int)
	env.Require(okAddr && okAmount)
	env.Require(amount.Sign() >= 0)

	if err := rs.SendRent(env.Caller(), solum.Address(addr), amount); err != nil {
		env.Stop(err)
	}
	return nil
}
