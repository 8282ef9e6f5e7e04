// Package logging builds the zerolog loggers used by concur primitives.
//
// Every primitive accepts an optional *zerolog.Logger in its Config. When it is
// nil the primitive logs nothing. The helpers here attach the component and
// instance name fields that all primitives share, and provide the panic path
// that logs a failure escaping a job, handler or timer callback before letting
// it terminate the process.
package logging
