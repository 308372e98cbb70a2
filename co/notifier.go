// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import "sync"

// Notifier wakes every goroutine waiting on it. A waiter obtained before
// Notify is released by it; one obtained after waits for the next call.
// The zero value is ready to use.
type Notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func (n *Notifier) current() chan struct{} {
	if n.ch == nil {
		n.ch = make(chan struct{})
	}
	return n.ch
}

// Wait returns a channel closed on the next Notify.
func (n *Notifier) Wait() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current()
}

// Notify releases all current waiters.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	close(n.current())
	n.ch = make(chan struct{})
}
