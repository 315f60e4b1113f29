package singleinstance

// Single-instance ownership and ask-once delegation over loopback TCP.
// The resident instance binds the start port of the configured range as its
// instance lock; a second launch detects it via PING and either refuses to
// start or, in --ask mode, delegates the capture-and-answer to the resident.

import (
	"context"
)

// Server owns the TCP endpoint and answers ask-once requests.
type Server interface {
	// Start binds the first port of the configured range and begins
	// accepting client requests. Fails when another resident holds it.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted ask request as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one delegated ask request.
type Conn interface {
	// RespondSuccess sends the answer text back to the asking process.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Client attempts to delegate an ask-once invocation to a resident server.
type Client interface {
	// TryAsk scans the configured port range, performs the PING handshake,
	// and delegates to the resident. If no resident is found, returns
	// delegated=false, err=nil.
	TryAsk(ctx context.Context) (delegated bool, text string, err error)
}

// NewServer returns the TCP implementation.
func NewServer() Server { return newTCPServer() }

// NewClient returns the TCP implementation.
func NewClient() Client { return newTCPClient() }
