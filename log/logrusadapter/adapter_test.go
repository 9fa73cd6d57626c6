package logrusadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/log/logrusadapter"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.Out = &buf
	l.Formatter = &logrus.JSONFormatter{DisableTimestamp: true}
	l.Level = logrus.DebugLevel

	logger := logrusadapter.NewLogger(l)
	logger.Log(context.Background(), pgmodel.LogLevelError, "hello", map[string]interface{}{"one": "two"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, map[string]interface{}{"level": "error", "msg": "hello", "one": "two"}, entry)

	buf.Reset()
	logger.Log(context.Background(), pgmodel.LogLevelDebug, "quiet", nil)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
}
