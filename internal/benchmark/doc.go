// Package benchmark holds micro-benchmarks for the concur primitives.
//
//	go test -bench=. -benchmem ./internal/benchmark/
package benchmark
