package models

import "time"

// SystemMetrics is the aggregated runtime snapshot served by the
// analytics endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SolveRuns                uint64    `json:"solve_runs_total"`
	AverageSolveDurationMs   float64   `json:"average_solve_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
