// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rendezvous

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/thermo/lib/netutil"
)

const (
	// DefaultDir is the directory holding rendezvous sockets.
	DefaultDir = "/tmp/thermo"

	// DefaultName is the collector's well-known name.
	DefaultName = "TempServer"

	// maxPacketSize bounds a single request or reply. Larger packets
	// are truncated by the kernel and show up at this size.
	maxPacketSize = 4096

	// probeTimeout bounds the liveness probe Attach makes against an
	// existing socket file.
	probeTimeout = time.Second

	// Accept failures such as EMFILE tend to persist; the accept loop
	// backs off between them, doubling from the minimum to the maximum.
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

var (
	// ErrNameInUse means another live server is attached to the name.
	ErrNameInUse = errors.New("rendezvous name already attached")

	// ErrClosed is returned by ReceiveNext after Detach.
	ErrClosed = errors.New("rendezvous server detached")

	// ErrAlreadyReplied is returned by a second Reply to one request.
	ErrAlreadyReplied = errors.New("request already answered")
)

// Path joins a rendezvous directory and name.
func Path(dir, name string) string {
	return filepath.Join(dir, name)
}

// Request is one message received from a producer, waiting for its
// reply. Exactly one Reply is delivered; later calls fail.
type Request struct {
	// Payload is the request exactly as sent.
	Payload []byte

	// PeerPID is the sending process as reported by the kernel, or 0
	// when unavailable. It is independent of anything in Payload.
	PeerPID int32

	replied atomic.Bool
	reply   chan []byte
}

// Reply sends message back to the producer. It does not block.
func (r *Request) Reply(message []byte) error {
	if !r.replied.CompareAndSwap(false, true) {
		return ErrAlreadyReplied
	}
	r.reply <- message
	return nil
}

type received struct {
	request *Request
	err     error
}

// Server is the attached side of a rendezvous name.
type Server struct {
	path     string
	listener *net.UnixListener
	logger   *slog.Logger

	incoming chan received
	done     chan struct{}
	detach   sync.Once

	connectionsMutex sync.Mutex
	connections      map[*net.UnixConn]struct{}

	// workers counts the accept loop and every connection reader.
	workers sync.WaitGroup
}

// Attach binds the name at path. If a live server already answers
// there, Attach returns ErrNameInUse. A stale socket left by a server
// that died without detaching is removed and the name re-bound.
func Attach(path string, logger *slog.Logger) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating rendezvous directory: %w", err)
	}

	if _, err := os.Lstat(path); err == nil {
		probe, dialErr := net.DialTimeout("unixpacket", path, probeTimeout)
		if dialErr == nil {
			probe.Close()
			return nil, fmt.Errorf("attaching %s: %w", path, ErrNameInUse)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("removing stale rendezvous socket %s: %w", path, err)
		}
		logger.Info("removed stale rendezvous socket", "path", path)
	}

	listener, err := net.ListenUnix("unixpacket", &net.UnixAddr{Name: path, Net: "unixpacket"})
	if err != nil {
		return nil, fmt.Errorf("attaching %s: %w", path, err)
	}

	server := &Server{
		path:        path,
		listener:    listener,
		logger:      logger,
		incoming:    make(chan received),
		done:        make(chan struct{}),
		connections: make(map[*net.UnixConn]struct{}),
	}
	server.workers.Add(1)
	go server.acceptLoop()
	return server, nil
}

// Path returns the socket path the server is attached to.
func (s *Server) Path() string { return s.path }

// ReceiveNext blocks until a request arrives, ctx is done, or the
// server is detached. A non-nil error with a nil request is a failed
// receive; the server remains usable and the caller may simply call
// ReceiveNext again. ctx.Err() and ErrClosed are the only terminal
// results.
func (s *Server) ReceiveNext(ctx context.Context) (*Request, error) {
	select {
	case item := <-s.incoming:
		return item.request, item.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrClosed
	}
}

// Detach stops accepting, drops every connection, waits for their
// readers to exit, and removes the socket file. Producers blocked in
// Send see an error. Detach is idempotent.
func (s *Server) Detach() error {
	var result error
	s.detach.Do(func() {
		close(s.done)
		s.listener.Close()

		s.connectionsMutex.Lock()
		for conn := range s.connections {
			conn.Close()
		}
		s.connectionsMutex.Unlock()

		s.workers.Wait()

		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			result = fmt.Errorf("removing rendezvous socket %s: %w", s.path, err)
		}
	})
	return result
}

func (s *Server) acceptLoop() {
	defer s.workers.Done()

	var delay time.Duration
	for {
		conn, err := s.listener.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if !s.deliver(received{err: fmt.Errorf("accepting connection: %w", err)}) {
				return
			}
			delay = nextAcceptDelay(delay)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-s.done:
				timer.Stop()
				return
			}
			continue
		}
		delay = 0

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.workers.Add(1)
		go s.serveConnection(conn)
	}
}

// nextAcceptDelay returns the pause after an accept failure, given the
// pause after the previous consecutive failure (zero for the first).
func nextAcceptDelay(previous time.Duration) time.Duration {
	if previous == 0 {
		return minAcceptDelay
	}
	return min(previous*2, maxAcceptDelay)
}

// serveConnection reads requests from one producer, one at a time,
// and writes each reply before reading the next.
func (s *Server) serveConnection(conn *net.UnixConn) {
	defer s.workers.Done()
	defer s.untrack(conn)
	defer conn.Close()

	peer := peerPID(conn)
	buffer := make([]byte, maxPacketSize)
	for {
		size, err := conn.Read(buffer)
		if err != nil {
			if netutil.IsExpectedCloseError(err) {
				return
			}
			s.deliver(received{err: fmt.Errorf("receiving from pid %d: %w", peer, err)})
			return
		}

		request := &Request{
			Payload: bytes.Clone(buffer[:size]),
			PeerPID: peer,
			reply:   make(chan []byte, 1),
		}
		if !s.deliver(received{request: request}) {
			return
		}

		select {
		case message := <-request.reply:
			if _, err := conn.Write(message); err != nil {
				s.logger.Debug("failed to write reply", "peer_pid", peer, "error", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// deliver hands an item to ReceiveNext. Returns false once detached.
func (s *Server) deliver(item received) bool {
	select {
	case s.incoming <- item:
		return true
	case <-s.done:
		return false
	}
}

// track registers conn for Detach. Returns false if already detached.
func (s *Server) track(conn *net.UnixConn) bool {
	s.connectionsMutex.Lock()
	defer s.connectionsMutex.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.connections[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *net.UnixConn) {
	s.connectionsMutex.Lock()
	defer s.connectionsMutex.Unlock()
	delete(s.connections, conn)
}
