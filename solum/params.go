package solum

import "math"

// Constants of the rent protocol. These are network-wide agreed values,
// never node-configurable.
const (
	BlockInterval uint64 = 12 // time interval between two consecutive blocks, in seconds.

	// RentAccountCost is the per-block rent cost of an account's mere existence.
	RentAccountCost uint64 = 4000

	// RentWordCost is the per-block rent cost of one 32-byte word of code or storage.
	RentWordCost uint64 = 4000

	// RentStipend is the minimum rent balance granted when an account is first
	// funded, gains code, or is first written to. Covers about 360 days of the
	// base account cost at 12s blocks.
	RentStipend uint64 = RentAccountCost * 2_592_000

	// MigrationWindow is the number of blocks of rent seeded into every
	// pre-existing account at the activation boundary.
	MigrationWindow uint32 = 2_592_000

	// PayRentGas is the flat execution cost of the pay-rent built-in contract.
	PayRentGas uint64 = 10_000

	// NeverEvict is the sentinel eviction height of an account that cannot
	// run out of rent.
	NeverEvict uint32 = math.MaxUint32
)

// CodeWords returns the length of code in 32-byte words, rounded up.
func CodeWords(codeLen uint64) uint64 {
	return (codeLen + 31) / 32
}
