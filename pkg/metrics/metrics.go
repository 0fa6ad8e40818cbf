package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libinstall_runs_total",
			Help: "Total number of install runs by outcome (count)",
		},
		[]string{"status"},
	)

	DownloadBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "libinstall_download_bytes",
			Help: "Size of the last downloaded archive in bytes",
		},
	)

	DownloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "libinstall_download_duration_ms",
			Help:    "Duration of the archive download in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		},
	)

	ExtractDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "libinstall_extract_duration_ms",
			Help:    "Duration of the archive extraction in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	ExtractedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "libinstall_extracted_entries",
			Help: "Number of archive entries extracted by the last run (count)",
		},
	)

	DownloadFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "libinstall_download_failures_total",
			Help: "Total number of failed downloads by upstream status code or transport (count)",
		},
		[]string{"status_code"},
	)

	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "libinstall_last_success_timestamp_seconds",
			Help: "Unix time of the last successful install (seconds)",
		},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		RunsTotal,
		DownloadBytes,
		DownloadDuration,
		ExtractDuration,
		ExtractedEntries,
		DownloadFailuresTotal,
		LastSuccessTimestamp,
	}
}

// RegisterInstallMetrics registers the install collectors on reg. Collectors
// already present on reg are left as they are.
func RegisterInstallMetrics(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func IncRun(status string) {
	RunsTotal.WithLabelValues(status).Inc()
}

func IncDownloadFailure(statusCode string) {
	DownloadFailuresTotal.WithLabelValues(statusCode).Inc()
}

func ObserveDownload(sizeBytes int64, duration time.Duration) {
	DownloadBytes.Set(float64(sizeBytes))
	DownloadDuration.Observe(float64(duration.Milliseconds()))
}

func ObserveExtract(entries int, duration time.Duration) {
	ExtractedEntries.Set(float64(entries))
	ExtractDuration.Observe(float64(duration.Milliseconds()))
}

func SetLastSuccess(t time.Time) {
	LastSuccessTimestamp.Set(float64(t.Unix()))
}
