package entities

import (
	"strings"
)

// SuccessSigil prefixes every marker written for a successful action.
const (
	SuccessSigil = "✅"
	FailureSigil = "❌"
)

type Outcome int

const (
	OutcomeBooked Outcome = iota
	OutcomeCancelled
	OutcomeAlreadyReserved
	OutcomeNotFound
	OutcomePersistenceError
	OutcomeMissingName
	OutcomeDataError
	OutcomeUnknownAction
)

var outcomeMarkers = map[Outcome]string{
	OutcomeBooked:           SuccessSigil + " DONE: Booked",
	OutcomeCancelled:        SuccessSigil + " DONE: Cancelled",
	OutcomeAlreadyReserved:  FailureSigil + " ALREADY RESERVED",
	OutcomeNotFound:         FailureSigil + " BOOKING NOT FOUND",
	OutcomePersistenceError: FailureSigil + " DB ERROR",
	OutcomeMissingName:      FailureSigil + " ERROR: Missing Name",
	OutcomeDataError:        FailureSigil + " DATA ERROR",
	OutcomeUnknownAction:    FailureSigil + " ERROR: Unknown Action",
}

var outcomeNames = map[Outcome]string{
	OutcomeBooked:           "booked",
	OutcomeCancelled:        "cancelled",
	OutcomeAlreadyReserved:  "already_reserved",
	OutcomeNotFound:         "not_found",
	OutcomePersistenceError: "persistence_error",
	OutcomeMissingName:      "missing_name",
	OutcomeDataError:        "data_error",
	OutcomeUnknownAction:    "unknown_action",
}

// Marker is the text written back into the request's status column.
func (o Outcome) Marker() string {
	return outcomeMarkers[o]
}

func (o Outcome) String() string {
	return outcomeNames[o]
}

func (o Outcome) Succeeded() bool {
	return o == OutcomeBooked || o == OutcomeCancelled
}

// IsDoneFor reports whether marker records a prior success of action. A row done
// for one action type is eligible again once its action changes.
func IsDoneFor(action Action, marker string) bool {
	if !strings.HasPrefix(strings.TrimSpace(marker), SuccessSigil) {
		return false
	}
	switch action {
	case ActionBook:
		return strings.Contains(marker, "Booked")
	case ActionCancel:
		return strings.Contains(marker, "Cancelled")
	}
	return false
}
