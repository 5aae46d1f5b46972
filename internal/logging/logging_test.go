package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labfund/fundops/internal/config"
)

func TestConfigure_JSON(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	})

	err := Configure(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("draft", "incomeFormDraft").Debug("draft saved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "draft saved", line["msg"])
	assert.Equal(t, "incomeFormDraft", line["draft"])
}

func TestConfigure_BadLevel(t *testing.T) {
	err := Configure(config.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}
