package tasks

import (
	"fmt"

	"github.com/desertthunder/songbook/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Validate Phase = iota
	AddSongs
	Complete
)

func (p Phase) String() string {
	switch p {
	case Validate:
		return "validate"
	case AddSongs:
		return "add_songs"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func validateUpdate(total, invalid int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    total - invalid,
		Total:   total,
		Message: fmt.Sprintf("Validated %d songs (%d invalid)", total, invalid),
	}
}

func songAddedUpdate(step, total int, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ #%d %s - %s", step, total, song.ID, song.Artist, song.Title),
		Data:    song,
	}
}

func songFailedUpdate(step, total int, in models.SongInput, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, in.Artist, in.Title, err),
	}
}

func completeUpdate(res *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    res.Total,
		Total:   res.Total,
		Message: fmt.Sprintf("Imported %d of %d songs", res.Added, res.Total),
		Data:    res,
	}
}
