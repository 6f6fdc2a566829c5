package pipeline

import "github.com/rotisserie/eris"

// Typed failures for the generate-report operation. Callers distinguish them
// with errors.Is.
var (
	// ErrNoQueries means the performance source could not provide query
	// data for the domain. An empty-but-successful fetch is not an error;
	// it yields an empty report.
	ErrNoQueries = eris.New("pipeline: query performance data unavailable")

	// ErrNoEngines means no answer engine has a credential configured.
	ErrNoEngines = eris.New("pipeline: no engines configured with credentials")

	// ErrNotPersisted means the report was computed but the store rejected
	// the upsert. The computed report is still returned alongside it.
	ErrNotPersisted = eris.New("pipeline: report computed but not saved")
)
