package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue はラベルが一致するカウンタの値を返す。見つからない場合は0。
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			match := true
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					match = false
				}
			}
			if match {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func histogramCount(t *testing.T, reg *prometheus.Registry, name string) (uint64, float64) {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			h := mf.GetMetric()[0].GetHistogram()
			return h.GetSampleCount(), h.GetSampleSum()
		}
	}
	return 0, 0
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordHTTPRequest_IncrementsCounterWithLabels はラベル別にカウントされることを検証する。
func TestRecordHTTPRequest_IncrementsCounterWithLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("POST", "/sessions", 201, time.Millisecond)
	c.RecordHTTPRequest("POST", "/sessions", 201, time.Millisecond)
	c.RecordHTTPRequest("POST", "/sessions", 400, time.Millisecond)

	if got := counterValue(t, reg, "studytrack_http_requests_total", map[string]string{"status_code": "201"}); got != 2 {
		t.Errorf("201 count = %v, want 2", got)
	}
	if got := counterValue(t, reg, "studytrack_http_requests_total", map[string]string{"status_code": "400"}); got != 1 {
		t.Errorf("400 count = %v, want 1", got)
	}
}

// TestRecordRecordsQuery_Success は成功時に件数ヒストグラムへ記録されることを検証する。
func TestRecordRecordsQuery_Success(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecordsQuery(20*time.Millisecond, 12, 5, nil)

	if got := counterValue(t, reg, "studytrack_records_queries_total", map[string]string{"outcome": "ok"}); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if n, sum := histogramCount(t, reg, "studytrack_records_sessions_scanned"); n != 1 || sum != 12 {
		t.Errorf("scanned = (%d, %v), want (1, 12)", n, sum)
	}
	if n, sum := histogramCount(t, reg, "studytrack_records_sessions_matched"); n != 1 || sum != 5 {
		t.Errorf("matched = (%d, %v), want (1, 5)", n, sum)
	}
}

// TestRecordRecordsQuery_Error は失敗時に件数を記録しないことを検証する。
func TestRecordRecordsQuery_Error(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecordsQuery(time.Millisecond, 0, 0, errors.New("db down"))

	if got := counterValue(t, reg, "studytrack_records_queries_total", map[string]string{"outcome": "error"}); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if n, _ := histogramCount(t, reg, "studytrack_records_sessions_scanned"); n != 0 {
		t.Errorf("scanned samples = %d, want 0", n)
	}
	if n, _ := histogramCount(t, reg, "studytrack_records_query_duration_seconds"); n != 1 {
		t.Errorf("duration samples = %d, want 1", n)
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordRecordsQuery(time.Millisecond, 1, 1, nil)
	c2.RecordRecordsQuery(time.Millisecond, 1, 1, nil)
	c2.RecordRecordsQuery(time.Millisecond, 1, 1, nil)

	if got := counterValue(t, reg1, "studytrack_records_queries_total", nil); got != 1 {
		t.Errorf("reg1 queries = %v, want 1", got)
	}
	if got := counterValue(t, reg2, "studytrack_records_queries_total", nil); got != 2 {
		t.Errorf("reg2 queries = %v, want 2", got)
	}
}
