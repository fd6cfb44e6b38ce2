package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Typed errors below match them via errors.Is.
var (
	ErrMissingInput       = errors.New("missing input")
	ErrSchemaViolation    = errors.New("schema violation")
	ErrEmptySelection     = errors.New("empty selection")
	ErrInvariantViolation = errors.New("invariant violation")
)

// MissingInputError reports a source table that cannot be located or loaded.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing input %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("missing input %s", e.Path)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }
func (e *MissingInputError) Unwrap() error          { return e.Err }

// SchemaError reports required columns absent from an input table.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns [%s] in %s", strings.Join(e.Missing, ", "), e.Source)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaViolation }

// Axis names the side of a matrix.
type Axis string

const (
	AxisRow  Axis = "row"
	AxisCol  Axis = "col"
	AxisBoth Axis = "both"
)

// EmptySelectionError reports that too few players survived filtering.
// Player is set when a specific requested player has no series.
type EmptySelectionError struct {
	Team      string
	Stat      string
	Player    string
	Axis      Axis
	Threshold int
	Remaining int
	Need      int
}

func (e *EmptySelectionError) Error() string {
	if e.Player != "" {
		return fmt.Sprintf("no %s series for player %q in %s", e.Stat, e.Player, e.Team)
	}
	return fmt.Sprintf("not enough players for %s %s (%s axis): %d remain with min games %d, need %d",
		e.Team, e.Stat, e.Axis, e.Remaining, e.Threshold, e.Need)
}

func (e *EmptySelectionError) Is(target error) bool { return target == ErrEmptySelection }

// InvariantError reports more than one row per (round, player) at pivot
// time, which means aggregation did not run or is broken.
type InvariantError struct {
	Round  int
	Player string
	Stat   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("duplicate row for round %d player %q stat %s after aggregation", e.Round, e.Player, e.Stat)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// Kind classifies an error into one of the taxonomy labels, for reporting.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrEmptySelection):
		return "empty_selection"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant_violation"
	default:
		return "other"
	}
}
