package testingadapter_test

import (
	"context"
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/log/testingadapter"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	args [][]interface{}
}

func (r *recorder) Log(args ...interface{}) {
	r.args = append(r.args, args)
}

func TestLogger(t *testing.T) {
	r := &recorder{}
	logger := testingadapter.NewLogger(r)
	logger.Log(context.Background(), pgmodel.LogLevelInfo, "Query", map[string]interface{}{"sql": "select 1", "rowCount": 1})

	assert.Equal(t, [][]interface{}{{pgmodel.LogLevelInfo, "Query", "rowCount=1", "sql=select 1"}}, r.args)
}
