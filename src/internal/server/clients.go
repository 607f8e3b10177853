package server

import (
	"net"
	"sync"
)

// clients is a concurrent map from connection handle to socket, so Stop
// can enumerate every open connection and close it.
type clients struct {
	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func newClients() *clients {
	return &clients{conns: make(map[net.Conn]struct{})}
}

func (c *clients) add(conn net.Conn) {
	c.mu.Lock()
	c.conns[conn] = struct{}{}
	c.mu.Unlock()
}

func (c *clients) remove(conn net.Conn) {
	c.mu.Lock()
	delete(c.conns, conn)
	c.mu.Unlock()
}

// closeAll closes every tracked connection, unblocking idle keep-alive
// goroutines so they return and the wait group can drain.
func (c *clients) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for conn := range c.conns {
		_ = conn.Close()
	}
}
