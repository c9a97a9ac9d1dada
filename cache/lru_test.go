// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU(8)
	assert.Nil(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(string) + "-value", nil
	}

	v, err := c.GetOrLoad("k", loader)
	assert.Nil(t, err)
	assert.Equal(t, "k-value", v)
	assert.Equal(t, 1, loads)

	// cached, loader not invoked again
	v, err = c.GetOrLoad("k", loader)
	assert.Nil(t, err)
	assert.Equal(t, "k-value", v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("x", func(any) (any, error) {
		return nil, errors.New("load failed")
	})
	assert.NotNil(t, err)
}
