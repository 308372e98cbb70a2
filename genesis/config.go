// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/builtin/token"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

// Amount is a big integer written in decimal or 0x prefixed hex.
type Amount big.Int

// NewAmount wraps v.
func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	v, ok := math.ParseBig256(node.Value)
	if !ok {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	(*big.Int)(a).Set(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a *Amount) MarshalYAML() (any, error) {
	return a.Int().String(), nil
}

// Int returns the value, nil for a nil amount.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return nil
	}
	return (*big.Int)(a)
}

// Config is the genesis file.
type Config struct {
	LaunchTime uint64        `yaml:"launchTime"`
	Token      TokenConfig   `yaml:"token"`
	Staking    StakingConfig `yaml:"staking"`
	Accounts   []Account     `yaml:"accounts"`
}

type TokenConfig struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
	FeeBps uint64 `yaml:"feeBps"`
}

type StakingConfig struct {
	MinAmount *Amount  `yaml:"minAmount"`
	MaxAmount *Amount  `yaml:"maxAmount"`
	Durations []uint64 `yaml:"durations"` // days
}

// Account is a pre-funded account. Balance is the native value, Tokens the
// amount of staking asset minted to it.
type Account struct {
	Address string  `yaml:"address"`
	Balance *Amount `yaml:"balance,omitempty"`
	Tokens  *Amount `yaml:"tokens,omitempty"`
}

// LoadConfig reads a genesis file. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes a genesis file content.
func ParseConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &cfg, nil
}

type allocation struct {
	addr    thor.Address
	balance *big.Int
	tokens  *big.Int
}

func (c *Config) allocations() ([]allocation, error) {
	allocs := make([]allocation, 0, len(c.Accounts))
	for _, acc := range c.Accounts {
		addr, err := thor.ParseAddress(acc.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "account %q", acc.Address)
		}
		alloc := allocation{addr: addr, balance: acc.Balance.Int(), tokens: acc.Tokens.Int()}
		if alloc.balance == nil && alloc.tokens == nil {
			return nil, fmt.Errorf("%s: balance or tokens must be set", addr)
		}
		allocs = append(allocs, alloc)
	}
	return allocs, nil
}

func (c *Config) validate() error {
	if c.Token.Name == "" {
		return errors.New("token name must be set")
	}
	if c.Token.FeeBps > token.MaxFeeBps {
		return fmt.Errorf("token fee %d bps exceeds %d", c.Token.FeeBps, token.MaxFeeBps)
	}
	if c.Staking.MinAmount == nil || c.Staking.MaxAmount == nil {
		return errors.New("staking amounts must be set")
	}
	if len(c.Staking.Durations) == 0 {
		return errors.New("staking durations must be set")
	}
	return nil
}

// NewCustom create a genesis from a config.
func NewCustom(cfg *Config) (*Genesis, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	allocs, err := cfg.allocations()
	if err != nil {
		return nil, err
	}

	builder := new(Builder).
		Timestamp(cfg.LaunchTime).
		Call(func(env *xenv.Environment) error {
			return builtin.Token.Native(env).Initialize(token.Config{
				Name:   cfg.Token.Name,
				Symbol: cfg.Token.Symbol,
				FeeBps: cfg.Token.FeeBps,
			})
		}).
		Call(func(env *xenv.Environment) error {
			return builtin.Staking.Native(env).Initialize(&staking.Config{
				Asset:     builtin.Token.Address,
				Min:       cfg.Staking.MinAmount.Int(),
				Max:       cfg.Staking.MaxAmount.Int(),
				Durations: cfg.Staking.Durations,
			})
		}).
		Call(func(env *xenv.Environment) error {
			for _, alloc := range allocs {
				if alloc.balance != nil {
					if err := env.State().SetBalance(alloc.addr, alloc.balance); err != nil {
						return err
					}
				}
				if alloc.tokens != nil && alloc.tokens.Sign() > 0 {
					if err := builtin.Token.Native(env).Mint(alloc.addr, alloc.tokens); err != nil {
						return errors.WithMessagef(err, "mint to %v", alloc.addr)
					}
				}
			}
			return nil
		})

	return newGenesis(builder, "custom")
}
