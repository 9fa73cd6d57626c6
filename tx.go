package pgmodel

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgmodel/pgtype"
	errors "golang.org/x/xerrors"
)

type TxIsoLevel string

// Transaction isolation levels
const (
	Serializable    = TxIsoLevel("serializable")
	RepeatableRead  = TxIsoLevel("repeatable read")
	ReadCommitted   = TxIsoLevel("read committed")
	ReadUncommitted = TxIsoLevel("read uncommitted")
)

type TxAccessMode string

// Transaction access modes
const (
	ReadWrite = TxAccessMode("read write")
	ReadOnly  = TxAccessMode("read only")
)

type TxDeferrableMode string

// Transaction deferrable modes
const (
	Deferrable    = TxDeferrableMode("deferrable")
	NotDeferrable = TxDeferrableMode("not deferrable")
)

const (
	TxStatusInProgress      = 0
	TxStatusCommitFailure   = -1
	TxStatusRollbackFailure = -2
	TxStatusInFailure       = -3
	TxStatusCommitSuccess   = 1
	TxStatusRollbackSuccess = 2
)

type TxOptions struct {
	IsoLevel       TxIsoLevel
	AccessMode     TxAccessMode
	DeferrableMode TxDeferrableMode
}

func (txOptions *TxOptions) beginSQL() string {
	if txOptions == nil {
		return "begin"
	}

	var sb strings.Builder
	sb.WriteString("begin")
	if txOptions.IsoLevel != "" {
		sb.WriteString(" isolation level ")
		sb.WriteString(string(txOptions.IsoLevel))
	}
	if txOptions.AccessMode != "" {
		sb.WriteString(" ")
		sb.WriteString(string(txOptions.AccessMode))
	}
	if txOptions.DeferrableMode != "" {
		sb.WriteString(" ")
		sb.WriteString(string(txOptions.DeferrableMode))
	}

	return sb.String()
}

var ErrTxClosed = errors.New("tx is closed")

// ErrTxCommitRollback occurs when an error has occurred in a transaction and
// Commit() is called. PostgreSQL accepts COMMIT on aborted transactions, but
// it is treated as ROLLBACK.
var ErrTxCommitRollback = errors.New("commit unexpectedly resulted in rollback")

// TxStatus returns the transaction status last reported by the server: 'I' when idle, 'T' inside a transaction
// block and 'E' inside a failed one.
func (c *Conn) TxStatus() byte {
	return c.client.TxStatus()
}

// Begin starts a transaction with txOptions determining the transaction mode. txOptions can be nil. The context only
// affects the begin command. There is no auto-rollback on context cancelation.
//
// The transaction lives on the connection: every statement sent through c until Commit or Rollback runs inside it,
// including the model operations. Each statement holds the connection lock for its own round trip only, so a Conn
// shared between goroutines would mix their statements into the transaction. Acquire a connection from a Pool to
// keep a transaction to one goroutine.
func (c *Conn) Begin(ctx context.Context, txOptions *TxOptions) (*Tx, error) {
	_, err := c.Exec(ctx, txOptions.beginSQL())
	if err != nil {
		// begin should never fail unless there is an underlying connection issue or
		// a context timeout. In either case, the connection is possibly broken.
		if !isLockError(err) {
			c.die()
		}
		return nil, err
	}

	return &Tx{conn: c, savepoints: new(int)}, nil
}

// BeginFunc starts a transaction and calls f. If f does not return an error the transaction is committed. If f
// returns an error the transaction is rolled back and the error from f is returned.
func (c *Conn) BeginFunc(ctx context.Context, txOptions *TxOptions, f func(*Tx) error) error {
	tx, err := c.Begin(ctx, txOptions)
	if err != nil {
		return err
	}
	return tx.run(ctx, f)
}

// die closes the client after a transaction left the connection in an unknown state. HasBroken reports true
// afterwards, so a Pool destroys the connection instead of reusing it.
func (c *Conn) die() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.acquire(ctx); err != nil {
		return
	}
	defer c.release()

	c.client.Close(ctx)
}

// isLockError reports if err happened before the statement was sent, while waiting for the connection.
func isLockError(err error) bool {
	var lockErr *LockError
	return errors.As(err, &lockErr)
}

// Tx represents a database transaction. A Tx started with Tx.Begin is a savepoint inside its parent.
//
// All Tx methods return ErrTxClosed if Commit or Rollback has already been
// called on the Tx. A Commit or Rollback that fails with a *LockError leaves the Tx open.
type Tx struct {
	conn       *Conn
	savepoint  int  // 0 for the outermost transaction
	savepoints *int // savepoint counter shared by the transaction and its savepoints
	err        error
	status     int8
}

func (tx *Tx) savepointName() string {
	return "sp_" + strconv.Itoa(tx.savepoint)
}

// Conn returns the connection the transaction runs on. Pass it to the model operations to run them inside the
// transaction.
func (tx *Tx) Conn() *Conn {
	return tx.conn
}

// Begin starts a pseudo nested transaction implemented with a savepoint.
func (tx *Tx) Begin(ctx context.Context) (*Tx, error) {
	if tx.status != TxStatusInProgress {
		return nil, ErrTxClosed
	}

	*tx.savepoints++
	sp := &Tx{conn: tx.conn, savepoint: *tx.savepoints, savepoints: tx.savepoints}

	_, err := tx.conn.Exec(ctx, "savepoint "+sp.savepointName())
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// BeginFunc starts a savepoint and calls f. The savepoint is released if f succeeds and rolled back to if it fails.
func (tx *Tx) BeginFunc(ctx context.Context, f func(*Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	return sp.run(ctx, f)
}

func (tx *Tx) run(ctx context.Context, f func(*Tx) error) error {
	if err := f(tx); err != nil {
		tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Commit commits the transaction. For a savepoint it releases the savepoint.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.status != TxStatusInProgress {
		return ErrTxClosed
	}

	if tx.savepoint > 0 {
		_, err := tx.conn.Exec(ctx, "release savepoint "+tx.savepointName())
		if isLockError(err) {
			return err
		}
		tx.err = err
		if tx.err == nil {
			tx.status = TxStatusCommitSuccess
		} else {
			tx.status = TxStatusCommitFailure
		}
		return tx.err
	}

	result, err := tx.conn.Exec(ctx, "commit")
	if isLockError(err) {
		return err
	}
	if err == nil && result.CommandTag == "COMMIT" {
		tx.status = TxStatusCommitSuccess
	} else if err == nil && result.CommandTag == "ROLLBACK" {
		tx.status = TxStatusCommitFailure
		tx.err = ErrTxCommitRollback
	} else {
		tx.status = TxStatusCommitFailure
		tx.err = err
		if tx.err == nil {
			tx.err = errors.Errorf("commit returned unexpected command tag %q", result.CommandTag)
		}
		// A commit failure leaves the connection in an undefined state
		tx.conn.die()
	}

	return tx.err
}

// Rollback rolls back the transaction. For a savepoint it rolls back to the savepoint and releases it. Rollback will
// return ErrTxClosed if the Tx is already closed, but is otherwise safe to call multiple times. Hence, a defer
// tx.Rollback() is safe even if tx.Commit() will be called first in a non-error condition.
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.status != TxStatusInProgress {
		return ErrTxClosed
	}

	sql := "rollback"
	if tx.savepoint > 0 {
		sql = "rollback to savepoint " + tx.savepointName() + "; release savepoint " + tx.savepointName()
	}

	_, err := tx.conn.Exec(ctx, sql)
	if isLockError(err) {
		return err
	}

	tx.err = err
	if tx.err == nil {
		tx.status = TxStatusRollbackSuccess
	} else {
		tx.status = TxStatusRollbackFailure
		if tx.savepoint == 0 {
			// A rollback failure leaves the connection in an undefined state
			tx.conn.die()
		}
	}

	return tx.err
}

// Exec delegates to the underlying *Conn
func (tx *Tx) Exec(ctx context.Context, sql string) (*Result, error) {
	if tx.status != TxStatusInProgress {
		return nil, ErrTxClosed
	}
	return tx.conn.Exec(ctx, sql)
}

// Query delegates to the underlying *Conn
func (tx *Tx) Query(ctx context.Context, sql string, params ...pgtype.Value) (*Rows, error) {
	if tx.status != TxStatusInProgress {
		return nil, ErrTxClosed
	}
	return tx.conn.Query(ctx, sql, params...)
}

// Status returns the status of the transaction from the set of
// TxStatus* constants.
func (tx *Tx) Status() int8 {
	if tx.status == TxStatusInProgress && tx.conn.TxStatus() == 'E' {
		return TxStatusInFailure
	}
	return tx.status
}

// Err returns the final error state, if any, of calling Commit or Rollback.
func (tx *Tx) Err() error {
	return tx.err
}
