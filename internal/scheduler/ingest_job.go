package scheduler

// Ingester advances the market data rotation by one symbol.
type Ingester interface {
	IngestNext()
}

// IngestJob pulls the next tracked symbol's daily series on each tick.
type IngestJob struct {
	ingester Ingester
}

// NewIngestJob creates a new ingestion job
func NewIngestJob(ingester Ingester) *IngestJob {
	return &IngestJob{ingester: ingester}
}

// Name returns the job name
func (j *IngestJob) Name() string { return "market_data_ingest" }

// Run ingests the next symbol in the rotation. Fetch failures are logged
// inside the service so the rotation keeps moving.
func (j *IngestJob) Run() error {
	j.ingester.IngestNext()
	return nil
}
