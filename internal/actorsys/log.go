package actorsys

import btclog "github.com/btcsuite/btclog/v2"

// log is the package-level logger used throughout actorsys. It defaults to
// a disabled logger so the package is silent until the host application
// wires up a real backend via UseLogger.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the logger used by the actorsys package. Host applications
// should call this once during startup, before any System is constructed,
// to route supervisor, mailbox, and registry diagnostics into their own log
// pipeline (see internal/build for a btclog.Handler fan-out implementation).
func UseLogger(logger btclog.Logger) {
	log = logger
}
