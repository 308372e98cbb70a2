// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	c, err := NewIntegrationTestChain()
	require.NoError(t, err)
	defer c.Close()

	head, err := c.Runtime().Head()
	require.NoError(t, err)
	assert.Equal(t, c.GenesisID(), head.Genesis)
	assert.Equal(t, uint32(0), head.Number)

	alice := c.Accounts()[0].Address
	index, err := c.Stake(alice, big.NewInt(5000), 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), index)

	bal, err := c.TokenBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000-5000), bal)

	c.AdvanceTime(10)
	head, err = c.Runtime().Head()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), head.Number)
	assert.Equal(t, c.Now(), c.Runtime().Now())
}
