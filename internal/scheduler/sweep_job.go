package scheduler

// Sweeper drops expired entries from a code store.
type Sweeper interface {
	Sweep()
}

// SweepJob clears abandoned verification codes.
type SweepJob struct {
	sweeper Sweeper
}

// NewSweepJob creates a new sweep job
func NewSweepJob(sweeper Sweeper) *SweepJob {
	return &SweepJob{sweeper: sweeper}
}

// Name returns the job name
func (j *SweepJob) Name() string { return "otp_sweep" }

// Run drops expired codes.
func (j *SweepJob) Run() error {
	j.sweeper.Sweep()
	return nil
}
