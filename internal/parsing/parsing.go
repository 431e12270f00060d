// Package parsing defines the contract shared by the log parsers.  A Parser
// turns one log stream into a Result; the Result knows how to turn itself
// into dataset entries for the sample the stream belongs to.
package parsing

import (
	"io"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
)

// Result is the parsed content of one log file.  Implementations must
// round-trip through encoding/json so they can be cached.
type Result interface {
	// Entries returns the dataset entries of the sample.  Empty tables are
	// never included.
	Entries(sampleID string) []dataset.Entry

	// SkippedRecords returns how many records were dropped with a warning.
	SkippedRecords() int
}

// Parser parses the logs of one module.
type Parser interface {
	// Name is the module name, e.g. "qm".
	Name() string

	// Datasets lists the datasets the module fills, in display order.
	Datasets() []dataset.Name

	// Parse reads one log.  Malformed input yields an input-class AppError;
	// absent sections are not errors.
	Parse(r io.Reader, logger logging.Logger) (Result, error)

	// NewResult returns an empty Result to decode a cached one into.
	NewResult() Result
}

//Personal.AI order the ending
