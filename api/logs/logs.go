// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{db, logsLimit}
}

func validateOrder(order logdb.Order) error {
	if order != "" && order != logdb.ASC && order != logdb.DESC {
		return fmt.Errorf("order must be either 'asc' or 'desc', got '%s'", order)
	}
	return nil
}

func (l *Logs) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Options.Validate(l.limit); err != nil {
		return utils.Forbidden(err)
	}
	if err := filter.Range.Validate(); err != nil {
		return utils.BadRequest(err)
	}
	if err := validateOrder(filter.Order); err != nil {
		return utils.BadRequest(err)
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}

	events, err := l.db.FilterEvents(req.Context(), convertEventFilter(&filter, l.limit))
	if err != nil {
		return err
	}
	if len(events) > int(l.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	fes := make([]*FilteredEvent, 0, len(events))
	for _, e := range events {
		fes = append(fes, ConvertEvent(e))
	}
	return utils.WriteJSON(w, fes)
}

func (l *Logs) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	var filter TransferFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Options.Validate(l.limit); err != nil {
		return utils.Forbidden(err)
	}
	if err := filter.Range.Validate(); err != nil {
		return utils.BadRequest(err)
	}
	if err := validateOrder(filter.Order); err != nil {
		return utils.BadRequest(err)
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}

	transfers, err := l.db.FilterTransfers(req.Context(), convertTransferFilter(&filter, l.limit))
	if err != nil {
		return err
	}
	if len(transfers) > int(l.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	fts := make([]*FilteredTransfer, 0, len(transfers))
	for _, t := range transfers {
		fts = append(fts, ConvertTransfer(t))
	}
	return utils.WriteJSON(w, fts)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterEvents))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /logs/transfer").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterTransfers))
}
