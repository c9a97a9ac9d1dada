package solum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	addrStr := "0xabcdef0123456789abcdef0123456789abcdef01"
	addr, err := ParseAddress(addrStr)
	assert.Nil(t, err)
	assert.Equal(t, addrStr, addr.String())

	// without 0x prefix
	addr2, err := ParseAddress(addrStr[2:])
	assert.Nil(t, err)
	assert.Equal(t, addr, addr2)

	_, err = ParseAddress("0x123")
	assert.NotNil(t, err)

	_, err = ParseAddress("zzcdef0123456789abcdef0123456789abcdef0101")
	assert.NotNil(t, err)
}

func TestBytesToAddress(t *testing.T) {
	assert.Equal(t, Address{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, BytesToAddress([]byte{1}))
	assert.True(t, Address{}.IsZero())
	assert.False(t, BytesToAddress([]byte{1}).IsZero())
}
