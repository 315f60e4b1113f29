package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"time"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	askRequest   = "ASK\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	lis      net.Listener
	incoming chan *tcpConn
	done     chan struct{}
	port     int
}

func newTCPServer() Server {
	return &tcpServer{
		incoming: make(chan *tcpConn, 8),
		done:     make(chan struct{}),
	}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(ctx)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)
		if line == pingRequest {
			log.Printf("singleinstance: PING from %s -> PONG", remote)
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}
		if line != askRequest {
			log.Printf("singleinstance: unknown request %q from %s", line, remote)
			_ = c.Close()
			continue
		}
		// Ask requests have no deadline: dispatch has no time bound.
		_ = c.SetDeadline(time.Time{})
		log.Printf("singleinstance: ASK from %s", remote)
		select {
		case s.incoming <- &tcpConn{c: c, w: bw}:
		case <-s.done:
			_ = c.Close()
			return
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, net.ErrClosed
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	close(s.done)
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	return nil
}

type tcpConn struct {
	c net.Conn
	w *bufio.Writer
}

func (tc *tcpConn) RespondSuccess(text string) error {
	if _, err := tc.w.WriteString("SUCCESS\n"); err != nil {
		return err
	}
	if len(text) > 0 {
		if _, err := tc.w.WriteString(text); err != nil {
			return err
		}
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	if _, err := tc.w.WriteString("ERROR\n" + msg); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
