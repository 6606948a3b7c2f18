// internal/common/observability/metrics_test.go
package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestZeroValueIsNoOp(t *testing.T) {
	var o Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		o.RecordJobProcessed(ctx, "classify-college-fit")
		o.RecordJobDuration(ctx, time.Second, "classify-college-fit")
		o.RecordRecommendations(ctx, 3, "redis")
		o.RecordClassifications(ctx, map[string]int{"REACH": 1})
		o.Shutdown()
	})
}

func TestNew(t *testing.T) {
	o := New("college-fit-workers-test", zaptest.NewLogger(t))
	defer o.Shutdown()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		o.RecordJobProcessed(ctx, "generate-college-recommendations")
		o.RecordRecommendations(ctx, 3, "postgres")
		o.RecordClassifications(ctx, map[string]int{"REACH": 1, "TARGET": 0, "SAFETY": 2})
	})
}
