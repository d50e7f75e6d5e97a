package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")
	assert.Equal(t, logrus.WarnLevel, logger.Level)

	logger.Info("dropped")
	logger.WithField("field", "OrderCommit").Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "OrderCommit", entry["field"])
}

func TestNewLogger_TextAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "loud", "TEXT")
	assert.Equal(t, logrus.InfoLevel, logger.Level)
	_, ok := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestLogError(t *testing.T) {
	LogError(nil, "m", "f", "c", nil, errors.New("ignored"))

	logger, hook := test.NewNullLogger()
	LogError(logger, "handlers", "CreateOrder", "CONSTRAINT_VIOLATION", nil, nil)
	assert.Empty(t, hook.AllEntries())

	LogError(logger, "handlers", "CreateOrder", "CONSTRAINT_VIOLATION", map[string]int{"poid": 3}, errors.New("fk"))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "fk", entry.Message)
	assert.Equal(t, "CreateOrder", entry.Data["funcName"])
	assert.Equal(t, map[string]int{"poid": 3}, entry.Data["data"])
}
