package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Example_basicUsage demonstrates basic metrics configuration.
func Example_basicUsage() {
	// Create a separate registry for this example
	registry := NewRegistry(prometheus.NewRegistry())

	registry.JobsEnqueued.WithLabelValues("io").Add(10)
	registry.JobsExecuted.WithLabelValues("io").Add(8)
	registry.EventsRejected.WithLabelValues("ui").Inc()

	fmt.Println(testutil.ToFloat64(registry.JobsEnqueued.WithLabelValues("io")))
	fmt.Println(testutil.ToFloat64(registry.EventsRejected.WithLabelValues("ui")))

	// Output:
	// 10
	// 1
}

// Example_configuration demonstrates different metrics configurations.
func Example_configuration() {
	defaultConfig := DefaultConfig()
	fmt.Printf("Default enabled: %v\n", defaultConfig.Enabled)
	fmt.Printf("Default namespace: %s\n", defaultConfig.Namespace)
	fmt.Printf("Shares default registry: %v\n", FromConfig(defaultConfig) == DefaultRegistry)

	custom := FromConfig(Config{
		Enabled:   true,
		Registry:  prometheus.NewRegistry(),
		Namespace: "myapp",
	})
	fmt.Printf("Shares default registry: %v\n", custom == DefaultRegistry)

	// Output:
	// Default enabled: true
	// Default namespace: concur
	// Shares default registry: true
	// Shares default registry: false
}
