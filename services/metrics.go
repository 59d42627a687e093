package services

import "github.com/prometheus/client_golang/prometheus"

var (
	reportSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_submissions_total",
			Help: "Report submissions by outcome",
		},
		[]string{"outcome"},
	)
	attachmentUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_attachment_uploads_total",
			Help: "Attachment uploads to the file store",
		},
		[]string{"kind", "status"},
	)
	attachmentBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "report_attachment_bytes",
			Help:    "Size of uploaded attachments",
			Buckets: prometheus.ExponentialBuckets(64<<10, 2, 10),
		},
	)
)

const (
	outcomeAccepted     = "accepted"
	outcomeInvalid      = "invalid"
	outcomeUploadFailed = "upload_failed"
	outcomeStoreFailed  = "store_failed"
)

// InitMetrics registers the report metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(reportSubmissions)
	prometheus.MustRegister(attachmentUploads)
	prometheus.MustRegister(attachmentBytes)
}
