package progress

import (
	"github.com/trebuchet-org/treb-contracts/internal/usecase"
)

// NewNopSink returns a sink that drops every event, used for --json/--yaml output
func NewNopSink() usecase.ProgressSink {
	return usecase.NopProgress{}
}
