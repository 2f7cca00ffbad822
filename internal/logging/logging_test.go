package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("order_id", "ord-1").Info("order created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "ord-1", entry["order_id"])
}

func TestNewWithOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "info", "text")
	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

// 不正なレベルは info にして警告
func TestNewWithOutput_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "loud", "json")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.True(t, strings.Contains(buf.String(), "invalid LOG_LEVEL"))
}
