package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewRunIDIsUniquePerCall(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	require.NotEqual(t, a, b)
}

func TestNewRunLoggerCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.Out = &buf
	logger.Formatter = &logrus.JSONFormatter{}

	run, ctx := NewRun(context.Background(), logger)
	defer run.End()

	require.NotNil(t, ctx)
	require.NotEmpty(t, run.ID)

	run.Logger.Info("hello")
	require.Contains(t, buf.String(), run.ID)
	require.Contains(t, buf.String(), `"run_id"`)
}

func TestStageLoggerCarriesStageField(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.Out = &buf
	logger.Formatter = &logrus.JSONFormatter{}

	run, ctx := NewRun(context.Background(), logger)
	defer run.End()

	_, stageLog, end := run.StartStage(ctx, "type_resolver")
	stageLog.Info("resolving types")
	end(attribute.Int("type_count", 3))

	require.Contains(t, buf.String(), `"stage":"type_resolver"`)
	require.Contains(t, buf.String(), run.ID)
}
