// Package obslog builds the process's structured logger, which is passed
// by handle (spec.md §9: "pass them by handle... to keep tests isolated")
// rather than reached through a package-level global. kvstore.Open is the
// only constructor that takes it; the entry builders, smtstore and history
// do not log.
package obslog

import "go.uber.org/zap"

// New builds a production zap.Logger when debug is false (JSON output,
// info level) and a development logger when debug is true (console
// output, debug level, stack traces on warn).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
