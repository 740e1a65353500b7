// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and console or JSON encoding.
//
// # Run Awareness
//
// Every invocation of the collection manager gets a run id. The WithRun helper
// attaches the run id and the requested operation to the logger so that all
// phase logs of one run can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithRun(log, runID, "update")
//	log.Info("Catalog loaded", zap.Int("printings", n))
package logger
