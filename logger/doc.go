// Package logger provides structured logging for apphost using zerolog.
//
// A single process-wide logger is initialized from configuration by the
// bootstrap sequence, handed to the composition root as an explicit
// dependency, and torn down by the shutdown sequencer. After Teardown every
// logger obtained from this package becomes a no-op.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  output: "stdout"   # stdout, stderr, or a file path
//
// # Usage
//
//	log := logger.WithComponent("bootstrap")
//	log.Info("Starting", logger.Fields("mode", "interactive"))
package logger
