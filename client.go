package pgmodel

import (
	"context"
	"io"

	"github.com/jackc/pgproto3/v2"
)

// Result is the complete result of one statement.
type Result struct {
	FieldDescriptions []pgproto3.FieldDescription
	Rows              [][][]byte
	CommandTag        string
}

// Notification is a message received through LISTEN.
type Notification struct {
	PID     uint32 // backend pid that sent the notification
	Channel string // channel from which notification was received
	Payload string
}

// Client is the native connection a Conn sends statements through. Conn serializes all calls, so implementations
// need not be safe for concurrent use.
//
// The production implementation is built on github.com/jackc/pgconn by Connect.
type Client interface {
	// Exec runs sql with the simple query protocol and returns the result of the last statement.
	Exec(ctx context.Context, sql string) (*Result, error)

	// ExecParams runs sql with the extended query protocol. The result columns are requested in resultFormat.
	ExecParams(ctx context.Context, sql string, paramOIDs []uint32, paramValues [][]byte, paramFormats []int16, resultFormat int16) (*Result, error)

	// CopyFrom sends the COPY ... FROM STDIN statement sql, streams r as the data, ends the copy and returns the
	// number of rows the server loaded.
	CopyFrom(ctx context.Context, sql string, r io.Reader) (int64, error)

	// WaitForNotification blocks until a notification is received or ctx is done.
	WaitForNotification(ctx context.Context) (*Notification, error)

	EscapeIdentifier(s string) string
	EscapeLiteral(s string) (string, error)

	// ParameterStatus returns the value of a parameter reported by the server or "" if it was not reported.
	ParameterStatus(key string) string

	// TxStatus returns the transaction status reported by the server with its last ReadyForQuery: 'I' when idle,
	// 'T' inside a transaction block and 'E' inside a failed one.
	TxStatus() byte

	IsClosed() bool
	Close(ctx context.Context) error
}
