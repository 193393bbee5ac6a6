// Package shutdown releases the resources of a run in ordered phases.
//
// The CLI registers one handler per resource it opens (span exporter,
// cache file) and calls Close once the build returns, whether it
// succeeded, failed or was interrupted. Lower phases run first; handlers
// sharing a phase run concurrently. A failing handler does not stop later
// ones.
//
//	coord := shutdown.New(logger)
//	coord.Register("telemetry", shutdown.PhaseFlush, provider.Shutdown)
//	coord.Register("cache", shutdown.PhaseStorage, func(context.Context) error {
//		return store.Close()
//	})
//	defer coord.Close(5 * time.Second)
//
// Interrupts are turned into context cancellation with Signals so an
// in-flight build aborts and the deferred Close still runs.
package shutdown
