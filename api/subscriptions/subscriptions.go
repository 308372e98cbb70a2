// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/metrics"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/thor"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveCount = metrics.LazyLoadGaugeVec("api_active_websocket_count", []string{"subject"})
)

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Maximum size of a message read from the peer.
	readLimit = 512
)

type Subscriptions struct {
	rt             *runtime.Runtime
	logDB          *logdb.LogDB
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	blockCache     *messageCache
	done           chan struct{}
	wg             sync.WaitGroup
}

type msgReader interface {
	Read() (msgs [][]byte, err error)
}

func New(rt *runtime.Runtime, logDB *logdb.LogDB, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		rt:             rt,
		logDB:          logDB,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		blockCache: newMessageCache(backtraceLimit),
		done:       make(chan struct{}),
	}
}

// parsePosition returns the first block number to read, defaulting to the next block.
func (s *Subscriptions) parsePosition(posStr string) (uint32, error) {
	head, err := s.rt.Head()
	if err != nil {
		return 0, err
	}
	if posStr == "" {
		return head.Number + 1, nil
	}
	pos, err := strconv.ParseUint(posStr, 10, 32)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if pos > uint64(head.Number)+1 {
		return 0, utils.BadRequest(errors.New("pos: out of range"))
	}
	if uint64(head.Number)-min(pos, uint64(head.Number)) > uint64(s.backtraceLimit) {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return uint32(pos), nil
}

func parseAddress(s string) (*thor.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func parseTopic(t string) (*thor.Bytes32, error) {
	if t == "" {
		return nil, nil
	}
	topic, err := thor.ParseBytes32(t)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *Subscriptions) handleEventReader(req *http.Request) (*eventReader, error) {
	query := req.URL.Query()
	position, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}
	address, err := parseAddress(query.Get("addr"))
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "addr"))
	}
	filter := &EventFilter{Address: address}
	topics := []**thor.Bytes32{&filter.Topic0, &filter.Topic1, &filter.Topic2, &filter.Topic3, &filter.Topic4}
	for i, topic := range topics {
		name := fmt.Sprintf("t%d", i)
		if *topic, err = parseTopic(query.Get(name)); err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, name))
		}
	}
	return newEventReader(s.rt, s.logDB, position, filter), nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	var (
		reader msgReader
		err    error
	)
	subject := mux.Vars(req)["subject"]
	switch subject {
	case "block":
		var pos uint32
		if pos, err = s.parsePosition(req.URL.Query().Get("pos")); err != nil {
			return err
		}
		reader = newBlockReader(s.rt, s.blockCache, pos)
	case "event":
		if s.logDB == nil {
			return utils.HTTPError(errors.New("event logs disabled"), http.StatusNotFound)
		}
		if reader, err = s.handleEventReader(req); err != nil {
			return err
		}
	default:
		return utils.HTTPError(errors.New("not found"), http.StatusNotFound)
	}

	conn, closed, err := s.setupConn(w, req)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	metricActiveCount().AddWithLabel(1, map[string]string{"subject": subject})
	defer metricActiveCount().AddWithLabel(-1, map[string]string{"subject": subject})

	err = s.pipe(conn, reader, closed)
	s.closeConn(conn, err)
	return nil
}

func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	// start read loop to handle close event
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(closed)

		conn.SetReadLimit(readLimit)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read err", "err", err)
				return
			}
		}
	}()
	return conn, closed, nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var closeMsg []byte
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	}

	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader, closed chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		// taken before reading so that no block is missed
		waiter := s.rt.NewBlockWaiter()

		msgs, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-waiter:
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close stops all subscriptions and waits for the connections to be released.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions/{subject}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
