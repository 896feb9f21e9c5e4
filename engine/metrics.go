package engine

import (
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	insertedMeter     = metrics.NewRegisteredMeter("vertexdag/vertices/inserted", nil)
	pendingMeter      = metrics.NewRegisteredMeter("vertexdag/vertices/pending", nil)
	duplicateMeter    = metrics.NewRegisteredMeter("vertexdag/vertices/duplicate", nil)
	invalidMeter      = metrics.NewRegisteredMeter("vertexdag/vertices/invalid", nil)
	equivocationMeter = metrics.NewRegisteredMeter("vertexdag/equivocations", nil)
	batchesMeter      = metrics.NewRegisteredMeter("vertexdag/batches/finalized", nil)
	bufferedGauge     = metrics.NewRegisteredGauge("vertexdag/vertices/buffered", nil)
)
