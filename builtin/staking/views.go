// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/thor"
)

//
// Getters - no state change
//

// Config returns the configuration written at initialization.
func (s *Staking) Config() (*Config, error) {
	cfg, err := s.storage.getConfig()
	if err != nil {
		return nil, err
	}
	durations, err := s.AllowedDurations()
	if err != nil {
		return nil, err
	}
	days := make([]uint64, 0, len(durations))
	for _, d := range durations {
		days = append(days, uint64(d))
	}
	return &Config{
		Asset:     cfg.Asset,
		Min:       cfg.Min,
		Max:       cfg.Max,
		Durations: days,
	}, nil
}

// IsInitialized reports whether Initialize has been done.
func (s *Staking) IsInitialized() (bool, error) {
	cfg, err := s.storage.config.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get config")
	}
	return cfg != nil, nil
}

// IsAllowedDuration checks membership of the allowed durations.
func (s *Staking) IsAllowedDuration(days uint64) (bool, error) {
	if days > math.MaxUint32 {
		return false, nil
	}
	return s.storage.durations.Contains(duration(days))
}

// AllowedDurations returns the allowed durations in configuration order.
func (s *Staking) AllowedDurations() ([]uint32, error) {
	values, err := s.storage.durations.Values()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get durations")
	}
	out := make([]uint32, 0, len(values))
	for _, d := range values {
		out = append(out, uint32(d))
	}
	return out, nil
}

// PositionCount returns the number of positions ever created by owner.
func (s *Staking) PositionCount(owner thor.Address) (uint64, error) {
	return s.storage.positions(owner).Len()
}

// Position returns a single position.
func (s *Staking) Position(owner thor.Address, index uint64) (*Position, error) {
	return s.storage.getPosition(owner, index)
}

// PositionsOf returns all positions of owner, withdrawn ones included. An
// unknown owner has none.
func (s *Staking) PositionsOf(owner thor.Address) ([]*Position, error) {
	positions, err := s.storage.positions(owner).All()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get positions")
	}
	return positions, nil
}

// AllOwners returns every address that has ever staked, in first stake order.
func (s *Staking) AllOwners() ([]thor.Address, error) {
	owners, err := s.storage.owners.Values()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get owners")
	}
	return owners, nil
}

// AllPositions returns the positions of every owner. It is meant for
// reporting; the result grows with the whole ledger.
func (s *Staking) AllPositions() ([]*OwnerPositions, error) {
	owners, err := s.AllOwners()
	if err != nil {
		return nil, err
	}
	out := make([]*OwnerPositions, 0, len(owners))
	for _, owner := range owners {
		positions, err := s.PositionsOf(owner)
		if err != nil {
			return nil, err
		}
		out = append(out, &OwnerPositions{Owner: owner, Positions: positions})
	}
	return out, nil
}

// TotalStaked returns the sum of all outstanding positions.
func (s *Staking) TotalStaked() (*big.Int, error) {
	return s.storage.totalStaked.Get()
}
