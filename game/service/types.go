package service

import (
	"time"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.Status     `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult is the outcome of a single command against a session.
type CommandResult struct {
	Status    engine.ResultStatus `json:"status"`
	Event     engine.Event        `json:"event"`
	Message   string              `json:"message"`
	GameState *engine.Status      `json:"game_state"`
	Step      *StepInfo           `json:"step,omitempty"`
}

// Success reports whether the engine applied the command.
func (r *CommandResult) Success() bool {
	return r.Status == engine.Applied
}

// BulkResult contains the result of a command sequence
type BulkResult struct {
	// Summary
	CommandsExecuted  int            `json:"commands_executed"`
	RequestedCommands int            `json:"requested_commands"`
	Success           bool           `json:"success"`
	GameState         *engine.Status `json:"game_state"`
	StoppedReason     string         `json:"stopped_reason,omitempty"`
	StopReasonCode    string         `json:"stop_reason_code,omitempty"` // rejected|game_over|victory|<failure reason>
	StoppedOnCommand  int            `json:"stopped_on_command,omitempty"`
	Truncated         bool           `json:"truncated,omitempty"`
	Limit             int            `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos      engine.Position `json:"start_pos"`
	EndPos        engine.Position `json:"end_pos"`
	StartShots    int             `json:"start_pictures_remaining"`
	EndShots      int             `json:"end_pictures_remaining"`
	PhotosDelta   int             `json:"photos_delta"`
	StartedFacing engine.Heading  `json:"start_facing"`
	EndFacing     engine.Heading  `json:"end_facing"`

	// Per-step trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	GameOver bool   `json:"game_over"`
	Message  string `json:"message,omitempty"`
}

// StepInfo is a compact record of one executed command
type StepInfo struct {
	Idx          int                 `json:"idx"`
	Command      string              `json:"command"`
	Status       engine.ResultStatus `json:"status"`
	Event        engine.Event        `json:"event"`
	From         engine.Position     `json:"from"`
	To           engine.Position     `json:"to"`
	FacingBefore engine.Heading      `json:"facing_before"`
	FacingAfter  engine.Heading      `json:"facing_after"`
	ShotsBefore  int                 `json:"pictures_before"`
	ShotsAfter   int                 `json:"pictures_after"`
	Message      string              `json:"message"`
}

// HistoryEntry records one command issued to a session.
type HistoryEntry struct {
	Seq            int                 `json:"seq"`
	Command        string              `json:"command"`
	Status         engine.ResultStatus `json:"status"`
	Event          engine.Event        `json:"event"`
	Message        string              `json:"message"`
	Position       engine.Position     `json:"position"`
	Facing         engine.Heading      `json:"facing"`
	ShotsRemaining int                 `json:"pictures_remaining"`
	Timestamp      time.Time           `json:"timestamp"`
}

// HistoryOptions configures command history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// History pagination defaults.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Entries       []HistoryEntry `json:"entries"`
	TotalCommands int            `json:"total_commands"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
	TotalPages    int            `json:"total_pages"`
	HasNext       bool           `json:"has_next"`
	HasPrevious   bool           `json:"has_previous"`
}

// ScanResult is a sensor sweep around the drone.
type ScanResult struct {
	Position   engine.Position    `json:"position"`
	Facing     engine.Heading     `json:"facing"`
	Detections []engine.Detection `json:"detections"`
	Summary    string             `json:"summary"`
}

// SolutionResult is a shortest winning plan from the session's current state.
type SolutionResult struct {
	Found    bool     `json:"found"`
	Commands []string `json:"commands"`
	Steps    int      `json:"steps"`
	Pictures int      `json:"pictures"`
	Explored int      `json:"explored"`
	Message  string   `json:"message"`
}

// ConfigInfo provides information about a game layout
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
	ShotBudget  int    `json:"shot_budget"`
	Trees       int    `json:"trees"`
	Format      string `json:"format"`
}
