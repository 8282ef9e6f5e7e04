package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/concur/internal/testutil"
)

func TestNewRegistryWithNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistryWithNamespace(reg, "app")

	r.TimerFires.WithLabelValues("tick").Inc()

	families, err := reg.Gather()
	testutil.AssertNoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "app_timer_fires_total" {
			found = true
		}
		testutil.AssertTrue(t, strings.HasPrefix(mf.GetName(), "app_"))
	}
	testutil.AssertTrue(t, found)
}

func TestFromConfig_Labels(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := FromConfig(Config{
		Enabled:  true,
		Registry: reg,
		Labels:   prometheus.Labels{"service": "api"},
	})

	r.PoolThreads.WithLabelValues("io").Set(4)

	expected := `
# HELP concur_threadpool_threads Number of worker threads in the pool
# TYPE concur_threadpool_threads gauge
concur_threadpool_threads{pool_name="io",service="api"} 4
`
	err := promtest.GatherAndCompare(reg, strings.NewReader(expected), "concur_threadpool_threads")
	testutil.AssertNoError(t, err)
}

func TestFromConfig_Default(t *testing.T) {
	testutil.AssertTrue(t, FromConfig(Config{Enabled: true}) == DefaultRegistry)
}
