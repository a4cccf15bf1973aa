// Package schedule repeats a job on a cron schedule until its context ends.
//
// Specs use six fields with a leading seconds field, as accepted by
// robfig/cron with cron.WithSeconds, or descriptors such as "@every 1h".
// Runs never overlap: a tick that arrives while the previous run is still
// in progress is skipped.
package schedule
