package lifecycle

// Command is one user action on the timer collection. The set of commands
// is closed; Controller.Handle switches over the concrete types below.
type Command interface {
	command()
}

// Start moves an Idle or Paused timer to Running.
type Start struct{ ID string }

// Pause freezes a Running timer's remaining time.
type Pause struct{ ID string }

// Reset returns a timer to Idle with its full duration.
type Reset struct{ ID string }

// Delete removes a timer and keeps a snapshot for UndoDelete.
type Delete struct{ ID string }

// UndoDelete restores the most recent Delete snapshot.
type UndoDelete struct{}

// Edit changes presentation fields only.
type Edit struct {
	ID         string
	Label      string
	ColorIndex int
	GroupID    *string
}

// CreateFromPreset adds an Idle timer from a preset duration. An empty
// label is replaced by the formatted duration and the color is random.
type CreateFromPreset struct {
	DurationMs int64
	Label      string
	GroupID    *string
}

// CreateCustom adds an Idle timer with explicit fields.
type CreateCustom struct {
	Label      string
	ColorIndex int
	DurationMs int64
	GroupID    *string
}

func (Start) command()            {}
func (Pause) command()            {}
func (Reset) command()            {}
func (Delete) command()           {}
func (UndoDelete) command()       {}
func (Edit) command()             {}
func (CreateFromPreset) command() {}
func (CreateCustom) command()     {}
