package pgmodel

import (
	"bytes"
	"context"
	"time"

	errors "golang.org/x/xerrors"
)

// copyNull is the text COPY representation of NULL.
var copyNull = []byte(`\N`)

// EncodeCopy encodes entities in the text COPY format: one line per entity holding the columns of model in order,
// separated by tabs. A field the entity does not provide or provides as NULL is written as \N.
//
// Values are written as their text encoding without escaping. Text that contains a tab, a newline or a backslash
// must not be copied this way.
func EncodeCopy[E any](model *Model[E], entities []E) ([]byte, error) {
	// buf is never nil so that an empty text value stays distinct from NULL.
	buf := make([]byte, 0, 64*len(entities))
	for _, e := range entities {
		for i, name := range model.columns {
			if i > 0 {
				buf = append(buf, '\t')
			}

			v, ok := model.Get(e, name)
			if !ok || v == nil {
				buf = append(buf, copyNull...)
				continue
			}

			encoded, err := v.EncodeText(buf)
			if err != nil {
				return nil, errors.Errorf("column %q: %w", name, err)
			}
			if encoded == nil {
				buf = append(buf, copyNull...)
				continue
			}
			buf = encoded
		}
		buf = append(buf, '\n')
	}
	return buf, nil
}

// Copy bulk loads entities into the relation of model with COPY ... FROM STDIN and returns the number of rows
// loaded. The whole stream is built before it is sent. A failure reported by the server is a *CopyError.
func Copy[E any](ctx context.Context, conn *Conn, model *Model[E], entities []E) (int64, error) {
	data, err := EncodeCopy(model, entities)
	if err != nil {
		return 0, err
	}
	return conn.copyFrom(ctx, model.copySQL(), data)
}

func (c *Conn) copyFrom(ctx context.Context, sql string, data []byte) (int64, error) {
	if err := c.acquire(ctx); err != nil {
		return 0, err
	}
	defer c.release()

	startTime := time.Now()

	n, err := c.client.CopyFrom(ctx, sql, bytes.NewReader(data))
	if err != nil {
		c.log(ctx, LogLevelError, "CopyFrom", map[string]interface{}{"sql": sql, "err": err})

		var copyErr *CopyError
		if errors.As(err, &copyErr) {
			return 0, err
		}
		return 0, &CopyError{Message: err.Error(), err: err}
	}

	if c.shouldLog(LogLevelInfo) {
		c.log(ctx, LogLevelInfo, "CopyFrom", map[string]interface{}{"sql": sql, "time": time.Since(startTime), "bytes": len(data), "rowCount": n})
	}
	return n, nil
}
