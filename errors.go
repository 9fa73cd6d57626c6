package pgmodel

import (
	"fmt"
	"sort"
	"strings"

	errors "golang.org/x/xerrors"
)

// ErrInvalidPage is returned by PaginateFindWhere when the requested page is not 1 or greater.
var ErrInvalidPage = errors.New("page numbers start at 1")

// ErrClosed is wrapped by LockError when a closed Conn is used.
var ErrClosed = errors.New("conn closed")

// ConnectError is the error returned when a connection cannot be established.
type ConnectError struct {
	Host string
	err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to host=%s: %v", e.Host, e.err)
}

func (e *ConnectError) Unwrap() error {
	return e.err
}

// LockError is the error returned when the connection lock cannot be acquired, either because the context ended
// first or because the connection is closed.
type LockError struct {
	err error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("failed to acquire connection lock: %v", e.err)
}

func (e *LockError) Unwrap() error {
	return e.err
}

// PrimaryKeyMismatchError is returned when a supplied primary key does not name exactly the declared key fields.
type PrimaryKeyMismatchError struct {
	Relation string
	Declared []string
	Supplied []string
}

func (e *PrimaryKeyMismatchError) Error() string {
	supplied := append([]string(nil), e.Supplied...)
	sort.Strings(supplied)
	return fmt.Sprintf("invalid primary key for %s: expected [%s], got [%s]",
		e.Relation, strings.Join(e.Declared, ", "), strings.Join(supplied, ", "))
}

// MissingFieldError is returned when a row or entity lacks a field that is required.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Name)
}

// CopyError carries the server message of a failed COPY.
type CopyError struct {
	Message string
	err     error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy failed: %s", e.Message)
}

func (e *CopyError) Unwrap() error {
	return e.err
}

// EscapeError is returned when a string cannot be escaped for interpolation into SQL.
type EscapeError struct {
	Value string
	err   error
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("failed to escape %q: %v", e.Value, e.err)
}

func (e *EscapeError) Unwrap() error {
	return e.err
}
