package ports

// Metric names shared by the pipeline and the observability backends.
const (
	MetricFramesSent         = "padlink_frames_sent_total"
	MetricAuxFramesSent      = "padlink_aux_frames_sent_total"
	MetricAuxFramesDropped   = "padlink_aux_frames_dropped_total"
	MetricWriteTimeouts      = "padlink_write_timeouts_total"
	MetricSampleErrors       = "padlink_sample_errors_total"
	MetricTelemetryLines     = "padlink_telemetry_lines_total"
	MetricTelemetryRecords   = "padlink_telemetry_records_total"
	MetricTelemetryDropped   = "padlink_telemetry_dropped_total"
	MetricAuxQueueLength     = "padlink_aux_queue_length"
	MetricSnapshotsPublished = "padlink_snapshots_published"
	MetricFrameWriteLatency  = "padlink_frame_write_seconds"
)
