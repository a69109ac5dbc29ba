// Package bootstrap runs one process lifetime end to end.
//
// Start parses the arguments, resolves the runtime mode, composes the
// runtime through the host package and runs it. Whatever happens on the
// way (a fatal configuration error, a panic, a second instance asking to
// terminate) the Sequencer releases the composition root, the pooled
// database handles, the trace exporter and, when asked to, the logger.
//
//	func main() {
//	    os.Exit(bootstrap.Start(os.Args[1:]))
//	}
package bootstrap
