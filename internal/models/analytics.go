package models

import "time"

// UserCounts groups accounts by approval status.
type UserCounts struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}

// UploadCounts groups compliance uploads by kind.
type UploadCounts struct {
	Total  int `db:"total" json:"total"`
	Images int `db:"images" json:"images"`
	Videos int `db:"videos" json:"videos"`
}

// QuizCounts summarises attempts. PassRate is a percentage.
type QuizCounts struct {
	TotalAttempts  int     `db:"total_attempts" json:"total_attempts"`
	PassedAttempts int     `db:"passed_attempts" json:"passed_attempts"`
	PassRate       float64 `db:"-" json:"pass_rate"`
}

// AnalyticsSummary is the admin dashboard read model.
type AnalyticsSummary struct {
	Users   UserCounts   `json:"users"`
	Uploads UploadCounts `json:"uploads"`
	Quiz    QuizCounts   `json:"quiz"`
}

// AnalyticsSystemMetrics is the process level view derived from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
