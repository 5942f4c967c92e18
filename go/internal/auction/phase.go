// Package auction derives auction phases, drives live countdowns and ranks bid history.
// Everything here is pure except TickSource, which owns the one shared ticker.
package auction

import (
	"time"

	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/mcdev12/bidboard/go/internal/timeutil"
)

// UnavailableLabel is shown instead of a phase or countdown when timestamps are invalid.
const UnavailableLabel = "time unavailable"

// Status pairs a phase with its display label.
type Status struct {
	Phase models.Phase `json:"phase"`
	Label string       `json:"label"`
}

// ResolvePhase derives the phase of an auction at now. Rules apply in order:
// closed wins over everything, then invalid (zero) timestamps yield
// PhaseUnavailable, then now is compared against [start, end).
func ResolvePhase(now, start, end time.Time, isClosed bool) models.Phase {
	switch {
	case isClosed:
		return models.PhaseClosed
	case start.IsZero() || end.IsZero():
		return models.PhaseUnavailable
	case now.Before(start):
		return models.PhaseUpcoming
	case now.Before(end):
		return models.PhaseOngoing
	default:
		return models.PhaseEnded
	}
}

// ResolveStatus resolves the phase of a and renders its label at now.
func ResolveStatus(now time.Time, a models.Auction) Status {
	phase := ResolvePhase(now, a.StartTime, a.EndTime, a.IsClosed)
	return Status{Phase: phase, Label: phaseLabel(phase, now, a.StartTime)}
}

func phaseLabel(phase models.Phase, now, start time.Time) string {
	switch phase {
	case models.PhaseClosed:
		return "Closed"
	case models.PhaseUpcoming:
		return "Starts in " + timeutil.StrictDistance(now, start)
	case models.PhaseOngoing:
		return "Ongoing"
	case models.PhaseEnded:
		return "Ended"
	default:
		return UnavailableLabel
	}
}
