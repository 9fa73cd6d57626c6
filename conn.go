package pgmodel

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgmodel/internal/sanitize"
	"github.com/jackc/pgmodel/pgtype"
	errors "golang.org/x/xerrors"
)

// Conn is a PostgreSQL connection handle. It is safe for concurrent use: every call holds the connection for its
// whole round trip and other callers wait for it.
type Conn struct {
	client   Client
	logger   Logger
	logLevel LogLevel
	typeMap  *pgtype.Map

	lock   chan struct{}
	closed chan struct{}
}

// Connect establishes a connection with a PostgreSQL server with a connection string. See
// ParseConfig for details on connString.
func Connect(ctx context.Context, connString string) (*Conn, error) {
	connConfig, err := ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	return ConnectConfig(ctx, connConfig)
}

// ConnectConfig establishes a connection with a PostgreSQL server with a configuration struct.
// connConfig must have been created by ParseConfig.
func ConnectConfig(ctx context.Context, connConfig *Config) (*Conn, error) {
	if !connConfig.createdByParseConfig {
		panic("config must be created by ParseConfig")
	}

	config := connConfig.Copy()
	c := NewConn(nil, config)

	client := &pgconnClient{}
	if config.OnNotice == nil {
		config.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
			c.log(context.Background(), LogLevelInfo, n.Message, map[string]interface{}{"severity": n.Severity, "code": n.Code})
		}
	}
	config.OnNotification = client.onNotification

	pgConn, err := pgconn.ConnectConfig(ctx, &config.Config)
	if err != nil {
		c.log(ctx, LogLevelError, "connect failed", map[string]interface{}{"host": config.Host, "err": err})
		return nil, &ConnectError{Host: config.Host, err: err}
	}

	client.conn = pgConn
	c.client = client

	return c, nil
}

// NewConn returns a Conn that sends its statements through client. config may be nil. Only its Logger, LogLevel and
// TypeMap fields are used.
func NewConn(client Client, config *Config) *Conn {
	c := &Conn{
		client:   client,
		logLevel: LogLevelInfo,
		lock:     make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}

	if config != nil {
		c.logger = config.Logger
		if config.LogLevel != 0 {
			c.logLevel = config.LogLevel
		}
		c.typeMap = config.TypeMap
	}
	if c.typeMap == nil {
		c.typeMap = pgtype.NewMap()
	}

	return c
}

// acquire takes the connection lock. It fails with a *LockError if ctx is done first or the connection is closed.
func (c *Conn) acquire(ctx context.Context) error {
	select {
	case c.lock <- struct{}{}:
	case <-ctx.Done():
		return &LockError{err: ctx.Err()}
	}

	if c.IsClosed() {
		<-c.lock
		return &LockError{err: ErrClosed}
	}

	return nil
}

func (c *Conn) release() {
	<-c.lock
}

// Close closes a connection. It is safe to call Close on an already closed connection.
func (c *Conn) Close(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		if errors.Is(err, ErrClosed) {
			return nil
		}
		return err
	}
	defer c.release()

	close(c.closed)
	return c.client.Close(ctx)
}

// IsClosed reports if the connection has been closed.
func (c *Conn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// HasBroken reports if the connection was closed or the underlying client connection was lost.
func (c *Conn) HasBroken() bool {
	return c.IsClosed() || c.client.IsClosed()
}

// TypeMap returns the type map used to resolve result columns.
func (c *Conn) TypeMap() *pgtype.Map {
	return c.typeMap
}

func (c *Conn) shouldLog(lvl LogLevel) bool {
	return c.logger != nil && c.logLevel >= lvl
}

func (c *Conn) log(ctx context.Context, lvl LogLevel, msg string, data map[string]interface{}) {
	if !c.shouldLog(lvl) {
		return
	}
	c.logger.Log(ctx, lvl, msg, data)
}

// Exec executes sql with the simple protocol. sql can be multiple statements separated by semicolons. The result of
// the last statement is returned.
func (c *Conn) Exec(ctx context.Context, sql string) (*Result, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	return c.execLocked(ctx, sql)
}

func (c *Conn) execLocked(ctx context.Context, sql string) (*Result, error) {
	startTime := time.Now()

	result, err := c.client.Exec(ctx, sql)
	if err != nil {
		c.log(ctx, LogLevelError, "Exec", map[string]interface{}{"sql": sql, "err": err})
		return nil, err
	}

	if c.shouldLog(LogLevelInfo) {
		c.log(ctx, LogLevelInfo, "Exec", map[string]interface{}{"sql": sql, "time": time.Since(startTime), "commandTag": result.CommandTag})
	}
	return result, nil
}

// Query executes sql with params and returns all of the result rows. Every "$*" marker in sql is replaced by the
// next positional parameter number. Results are always requested in the binary format.
func (c *Conn) Query(ctx context.Context, sql string, params ...pgtype.Value) (*Rows, error) {
	q := sanitize.NewQuery(sql)
	if n := q.MaxPlaceholder(); n > len(params) {
		return nil, errors.Errorf("expected %d arguments, got %d", n, len(params))
	}
	sql = q.String()

	oids, values, formats, err := encodeParams(params)
	if err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	startTime := time.Now()

	result, err := c.client.ExecParams(ctx, sql, oids, values, formats, int16(pgtype.BinaryFormatCode))
	if err != nil {
		c.log(ctx, LogLevelError, "Query", map[string]interface{}{"sql": sql, "args": logQueryArgs(values, formats), "err": err})
		return nil, err
	}

	if c.shouldLog(LogLevelInfo) {
		c.log(ctx, LogLevelInfo, "Query", map[string]interface{}{
			"sql":        sql,
			"args":       logQueryArgs(values, formats),
			"time":       time.Since(startTime),
			"commandTag": result.CommandTag,
			"rowCount":   len(result.Rows),
		})
	}

	return newRows(c.typeMap, result), nil
}

// QueryOne executes sql with params and returns the first row. A result without rows is a *MissingFieldError.
func (c *Conn) QueryOne(ctx context.Context, sql string, params ...pgtype.Value) (*Row, error) {
	rows, err := c.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	if rows.Len() == 0 {
		return nil, &MissingFieldError{Name: "0"}
	}
	return rows.Row(0), nil
}

// Ping checks that the server answers a trivial statement.
func (c *Conn) Ping(ctx context.Context) error {
	_, err := c.Exec(ctx, ";")
	return err
}

// Notify sends payload to the listeners of channel. An empty payload is omitted.
func (c *Conn) Notify(ctx context.Context, channel, payload string) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	sql := "NOTIFY " + c.client.EscapeIdentifier(channel)
	if payload != "" {
		literal, err := c.client.EscapeLiteral(payload)
		if err != nil {
			return err
		}
		sql += ", " + literal
	}

	_, err := c.execLocked(ctx, sql)
	return err
}

// Listen subscribes the connection to channel.
func (c *Conn) Listen(ctx context.Context, channel string) error {
	return c.execIdentifier(ctx, "LISTEN ", channel)
}

// Unlisten unsubscribes the connection from channel.
func (c *Conn) Unlisten(ctx context.Context, channel string) error {
	return c.execIdentifier(ctx, "UNLISTEN ", channel)
}

func (c *Conn) execIdentifier(ctx context.Context, command, identifier string) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	_, err := c.execLocked(ctx, command+c.client.EscapeIdentifier(identifier))
	return err
}

// WaitForNotification waits for a notification on a channel the connection listens to. The connection is held for
// the whole wait.
func (c *Conn) WaitForNotification(ctx context.Context) (*Notification, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	return c.client.WaitForNotification(ctx)
}

// ServerVersion returns the version reported by the server in the server_version parameter.
func (c *Conn) ServerVersion(ctx context.Context) (*semver.Version, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	s := c.client.ParameterStatus("server_version")
	c.release()

	if s == "" {
		return nil, errors.New("server did not report server_version")
	}

	// Distributions append details such as "13.4 (Debian 13.4-1.pgdg100+1)".
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}

	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, errors.Errorf("cannot parse server_version %q: %w", s, err)
	}
	return v, nil
}
