// Package serverrun exposes the Run entrypoint used by the CLI to start the
// xstream runtime behind its HTTP server, handling config watching,
// lifecycle and shutdown.
//
// Example:
//
//	opts := serverrun.Options{Config: config.Default()}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
