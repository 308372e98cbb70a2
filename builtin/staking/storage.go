// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/builtin/solidity"
	"github.com/vechain/lockstake/thor"
)

var (
	slotConfig      = nameToSlot("staking-config")
	slotDurations   = nameToSlot("staking-durations")
	slotOwners      = nameToSlot("staking-owners")
	slotPositions   = nameToSlot("staking-positions")
	slotTotalStaked = nameToSlot("staking-total-staked")
	slotLock        = nameToSlot("staking-lock")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// storedConfig is the rlp layout of the config slot.
type storedConfig struct {
	Asset thor.Address
	Min   *big.Int
	Max   *big.Int
}

// storage represents the root storage for the Staking contract.
type storage struct {
	context     *solidity.Context
	config      *solidity.Value[*storedConfig]
	durations   *solidity.Set[duration]
	owners      *solidity.Set[thor.Address]
	totalStaked *solidity.Uint256
	lock        *solidity.Value[bool]
}

func newStorage(context *solidity.Context) *storage {
	return &storage{
		context:     context,
		config:      solidity.NewValue[*storedConfig](context, slotConfig),
		durations:   solidity.NewSet[duration](context, slotDurations),
		owners:      solidity.NewSet[thor.Address](context, slotOwners),
		totalStaked: solidity.NewUint256(context, slotTotalStaked),
		lock:        solidity.NewValue[bool](context, slotLock),
	}
}

// positions returns the append-only position array of owner.
func (s *storage) positions(owner thor.Address) *solidity.Array[*Position] {
	return solidity.NewArray[*Position](s.context, thor.Blake2b(slotPositions.Bytes(), owner.Bytes()))
}

func (s *storage) getConfig() (*storedConfig, error) {
	cfg, err := s.config.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config")
	}
	if cfg == nil {
		return nil, reverts.ErrNotInitialized
	}
	return cfg, nil
}

func (s *storage) getPosition(owner thor.Address, index uint64) (*Position, error) {
	p, err := s.positions(owner).Get(index)
	if err != nil {
		if errors.Is(err, solidity.ErrOutOfBounds) {
			return nil, reverts.ErrIndexOutOfRange
		}
		return nil, errors.Wrap(err, "failed to get position")
	}
	return p, nil
}

func (s *storage) setPosition(owner thor.Address, index uint64, p *Position) error {
	if err := s.positions(owner).Set(index, p); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}

func (s *storage) appendPosition(owner thor.Address, p *Position) (uint64, error) {
	index, err := s.positions(owner).Push(p)
	if err != nil {
		return 0, errors.Wrap(err, "failed to append position")
	}
	return index, nil
}
