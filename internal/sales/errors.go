package sales

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a record lookup yields nothing.
var ErrNotFound = errors.New("not found")

// ErrSalespersonNotFound is returned when the recording user does not exist.
var ErrSalespersonNotFound = fmt.Errorf("salesperson %w", ErrNotFound)

// Error para transiciones inválidas
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrInvalidState is returned for unknown vehicle state or classification literals.
var ErrInvalidState = errors.New("invalid state value")

// ErrVehicleUnavailable is returned when a vehicle cannot be sold in its current state.
var ErrVehicleUnavailable = errors.New("vehicle is not available for sale")

// ClientNotFoundError carries the national ID that failed to resolve.
type ClientNotFoundError struct {
	NationalID string
}

func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("Client with national ID %s not found", e.NationalID)
}

func (e *ClientNotFoundError) Is(target error) bool { return target == ErrNotFound }

// VehicleNotFoundError carries the plate that failed to resolve.
type VehicleNotFoundError struct {
	Plate string
}

func (e *VehicleNotFoundError) Error() string {
	return fmt.Sprintf("Vehicle with plate %s not found", e.Plate)
}

func (e *VehicleNotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError lists the messages collected for each offending field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no violation was recorded.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// errOrNil lets callers return the collected violations only when there are any.
func (e *ValidationError) errOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}
