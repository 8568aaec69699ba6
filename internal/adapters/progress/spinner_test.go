package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

func TestSpinnerSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSpinnerSinkTo(&buf)
	ctx := context.Background()

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "explorer", Message: "Querying etherscan", Spinner: true})
	assert.Equal(t, "explorer", sink.Stage())

	sink.Info("cached 2 contracts")
	sink.Error("boom")

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "resolved"})
	assert.Equal(t, "resolved", sink.Stage())
	assert.False(t, sink.spinner.Active())

	assert.Contains(t, buf.String(), "cached 2 contracts\n")
	assert.Contains(t, buf.String(), "boom\n")
}

func TestNopSink(t *testing.T) {
	sink := NewNopSink()
	sink.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "resolved"})
	sink.Info("ignored")
	sink.Error("ignored")
}
