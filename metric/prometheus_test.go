package metric

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/simili"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Operations(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordRecommend(3, 2*time.Millisecond, nil)
	c.RecordRecommend(0, time.Millisecond, fmt.Errorf("%w: x", simili.ErrNotFound))
	c.RecordSearch(2, time.Millisecond, nil)
	c.RecordSearch(0, time.Millisecond, simili.ErrEmptyQuery)
	c.RecordCatalogLoad(5, time.Millisecond, nil)
	c.RecordCatalogLoad(0, time.Millisecond, errors.New("connection refused"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("recommend", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("recommend", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("search", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues("catalog_load", "error")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.catalogSize))
}

func TestCollector_HTTP(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveHTTP("/api/search", "GET", 200, time.Millisecond)
	c.ObserveHTTP("/api/search", "GET", 200, time.Millisecond)
	c.ObserveHTTP("", "GET", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("/api/search", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestCollector_Registry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.RecordRecommend(1, time.Millisecond, nil)

	count, err := testutil.GatherAndCount(reg, "simili_operations_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Panics(t, func() { New(reg) })
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{simili.ErrNotFound, "not_found"},
		{simili.ErrInvalidK, "invalid"},
		{simili.ErrEmptyQuery, "invalid"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status(tt.err))
	}
}
