package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot of runtime counters for
// the admin status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// StorageReport combines registry bookkeeping with what the object store holds.
type StorageReport struct {
	RegisteredFiles int     `json:"registered_files"`
	RegisteredBytes int64   `json:"registered_bytes"`
	StoredFiles     int     `json:"stored_files"`
	StoredBytes     int64   `json:"stored_bytes"`
	StoredMB        float64 `json:"stored_mb"`
}

// PurgeResult summarises an administrative attachment purge.
type PurgeResult struct {
	DeletedObjects int   `json:"deleted_objects"`
	DeletedRows    int64 `json:"deleted_rows"`
}
