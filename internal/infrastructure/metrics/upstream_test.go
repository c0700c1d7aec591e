package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream_CountsByOutcome(t *testing.T) {
	okBefore := testutil.ToFloat64(upstreamRequests.WithLabelValues("notion", "ok"))
	errBefore := testutil.ToFloat64(upstreamRequests.WithLabelValues("notion", "error"))

	ObserveUpstream("notion", nil)
	ObserveUpstream("notion", errors.New("boom"))
	ObserveUpstream("notion", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(upstreamRequests.WithLabelValues("notion", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("notion", "error")))
}

func TestObserveUpstream_SeparatesUpstreams(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("s3", "ok"))
	ObserveUpstream("s3", nil)
	ObserveUpstream("google", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("s3", "ok")))
}
