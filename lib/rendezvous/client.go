// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rendezvous

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// ErrAbandoned is returned by Send on a connection whose earlier Send
// was cancelled. The cancelled request's reply may still be in flight,
// so the exchange can no longer be matched up; open a new Conn.
var ErrAbandoned = errors.New("rendezvous connection abandoned by a cancelled send")

// Conn is a producer's connection to an attached name. Send may be
// called repeatedly; concurrent Sends are serialized.
type Conn struct {
	mutex     sync.Mutex
	conn      *net.UnixConn
	path      string
	abandoned bool
}

// Open connects to the name at path. It fails immediately if no server
// is attached.
func Open(ctx context.Context, path string) (*Conn, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unixpacket", path)
	if err != nil {
		return nil, fmt.Errorf("opening rendezvous name %s: %w", path, err)
	}
	return &Conn{conn: conn.(*net.UnixConn), path: path}, nil
}

// Send writes request as a single message and blocks until the reply
// arrives or ctx is done. A Send cut short by ctx leaves the Conn
// abandoned: every later Send returns ErrAbandoned.
func (c *Conn) Send(ctx context.Context, request []byte) (reply []byte, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.abandoned {
		return nil, fmt.Errorf("sending on %s: %w", c.path, ErrAbandoned)
	}

	// Cancelling ctx expires the deadline, which unblocks the pending
	// read or write.
	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(expired)
		c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer func() {
		if stop() {
			return
		}
		<-expired
		if err != nil {
			c.abandoned = true
		}
		c.conn.SetDeadline(time.Time{})
	}()

	if _, err := c.conn.Write(request); err != nil {
		return nil, c.sendError(ctx, "sending request", err)
	}

	buffer := make([]byte, maxPacketSize)
	size, err := c.conn.Read(buffer)
	if err != nil {
		return nil, c.sendError(ctx, "reading reply", err)
	}
	return bytes.Clone(buffer[:size]), nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// sendError reports a failed exchange, preferring the context's error
// when cancellation caused it.
func (c *Conn) sendError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return fmt.Errorf("%s on %s: %w", operation, c.path, err)
}
