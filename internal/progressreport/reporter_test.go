package progressreport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TEST PLAN: Reporter/Throttle
//
// 1. ReporterFunc.Report forwards to the wrapped function.
// 2. NoOp never panics and is safely callable.
// 3. Throttle.Ready is true on the first call, false immediately after,
//    true again once MinInterval has elapsed.

func TestReporterFunc_Forwards(t *testing.T) {
	t.Parallel()
	var got Report
	var r Reporter = ReporterFunc(func(rep Report) { got = rep })
	r.Report(Report{Phase: PhaseStoring, DocumentsIndexed: 3})
	assert.Equal(t, PhaseStoring, got.Phase)
	assert.Equal(t, 3, got.DocumentsIndexed)
}

func TestNoOp_DoesNothing(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { NoOp.Report(Report{Phase: PhaseComplete}) })
}

func TestThrottle_ReadyTiming(t *testing.T) {
	t.Parallel()
	var th Throttle
	base := time.Now()

	assert.True(t, th.Ready(base))
	assert.False(t, th.Ready(base.Add(10*time.Millisecond)))
	assert.True(t, th.Ready(base.Add(MinInterval+time.Millisecond)))
}
