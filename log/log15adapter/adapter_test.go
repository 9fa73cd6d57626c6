package log15adapter_test

import (
	"context"
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/log/log15adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log "gopkg.in/inconshreveable/log15.v2"
)

func TestLogger(t *testing.T) {
	var records []*log.Record
	l := log.New()
	l.SetHandler(log.FuncHandler(func(r *log.Record) error {
		records = append(records, r)
		return nil
	}))

	logger := log15adapter.NewLogger(l)
	logger.Log(context.Background(), pgmodel.LogLevelWarn, "hello", map[string]interface{}{"one": "two"})
	logger.Log(context.Background(), pgmodel.LogLevelTrace, "trace", nil)

	require.Len(t, records, 2)

	assert.Equal(t, "hello", records[0].Msg)
	assert.Equal(t, log.LvlWarn, records[0].Lvl)
	assert.Equal(t, []interface{}{"one", "two"}, records[0].Ctx)

	assert.Equal(t, log.LvlDebug, records[1].Lvl)
	assert.Equal(t, []interface{}{"PGMODEL_LOG_LEVEL", pgmodel.LogLevelTrace}, records[1].Ctx)
}
