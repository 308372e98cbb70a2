// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/thor"
)

// Info is the node status.
type Info struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	GenesisID   thor.Bytes32 `json:"genesisID"`
	BlockNumber uint32       `json:"blockNumber"`
	BlockTime   uint64       `json:"blockTime"`
	StateRoot   thor.Bytes32 `json:"stateRoot"`
	Now         uint64       `json:"now"`
	Contracts   Contracts    `json:"contracts"`
}

// Contracts addresses of the built-in contracts.
type Contracts struct {
	Staking thor.Address `json:"staking"`
	Token   thor.Address `json:"token"`
}

type Node struct {
	rt      *runtime.Runtime
	name    string
	version string
}

func New(rt *runtime.Runtime, name, version string) *Node {
	return &Node{rt, name, version}
}

func (n *Node) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	head, err := n.rt.Head()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Info{
		Name:        n.name,
		Version:     n.version,
		GenesisID:   head.Genesis,
		BlockNumber: head.Number,
		BlockTime:   head.Time,
		StateRoot:   head.Root,
		Now:         n.rt.Now(),
		Contracts: Contracts{
			Staking: builtin.Staking.Address,
			Token:   builtin.Token.Address,
		},
	})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetInfo))
}
