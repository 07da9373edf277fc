package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/solver"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewGameService creates a new game service instance. A nil logger disables logging.
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
	}
}

// getConfigID returns the config_id for a given layout name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Status(),
		GameConfig:     sess.Config,
	}
}

// lookup fetches a session and touches its access time.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("config", sess.ConfigID))

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// Move flies the drone one cell relative to its heading.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, sensors bool) (*CommandResult, error) {
	return s.single(sessionID, engine.Command{Action: engine.ActionMove, Direction: direction, Sensors: sensors})
}

// Turn rotates the drone a quarter turn.
func (s *gameServiceImpl) Turn(ctx context.Context, sessionID, direction string, sensors bool) (*CommandResult, error) {
	return s.single(sessionID, engine.Command{Action: engine.ActionTurn, Direction: direction, Sensors: sensors})
}

// TakePicture fires the camera.
func (s *gameServiceImpl) TakePicture(ctx context.Context, sessionID string, sensors bool) (*CommandResult, error) {
	return s.single(sessionID, engine.Command{Action: engine.ActionPicture, Sensors: sensors})
}

// Reset restores the session's layout to its initial state.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.single(sessionID, engine.Command{Action: engine.ActionReset})
}

func (s *gameServiceImpl) single(sessionID string, cmd engine.Command) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	step, res := s.apply(sess, 1, cmd)
	return &CommandResult{
		Status:    res.Status,
		Event:     res.Event,
		Message:   res.Message,
		GameState: sess.Engine.Status(),
		Step:      &step,
	}, nil
}

// apply runs one command, records it in the session history and returns its trace.
func (s *gameServiceImpl) apply(sess *Session, idx int, cmd engine.Command) (StepInfo, engine.Result) {
	eng := sess.Engine
	step := StepInfo{
		Idx:          idx,
		Command:      cmd.String(),
		From:         eng.Position(),
		FacingBefore: eng.Facing(),
		ShotsBefore:  eng.ShotsRemaining(),
	}

	res := eng.Execute(cmd)

	step.Status = res.Status
	step.Event = res.Event
	step.Message = res.Message
	step.To = eng.Position()
	step.FacingAfter = eng.Facing()
	step.ShotsAfter = eng.ShotsRemaining()

	s.record(sess, step.Command, res)
	s.logger.Debug("command executed",
		zap.String("session_id", sess.ID),
		zap.String("command", step.Command),
		zap.String("status", string(res.Status)),
		zap.String("event", string(res.Event)))
	if res.Status == engine.Applied && eng.IsGameOver() {
		s.logger.Info("game finished",
			zap.String("session_id", sess.ID),
			zap.String("outcome", eng.Outcome().String()),
			zap.Int("pictures_remaining", eng.ShotsRemaining()))
	}
	return step, res
}

func (s *gameServiceImpl) record(sess *Session, command string, res engine.Result) {
	sess.History = append(sess.History, HistoryEntry{
		Seq:            len(sess.History) + 1,
		Command:        command,
		Status:         res.Status,
		Event:          res.Event,
		Message:        res.Message,
		Position:       sess.Engine.Position(),
		Facing:         sess.Engine.Facing(),
		ShotsRemaining: sess.Engine.ShotsRemaining(),
		Timestamp:      time.Now(),
	})
}

// Execute runs a sequence of commands in order
func (s *gameServiceImpl) Execute(ctx context.Context, sessionID string, commands []string, reset bool) (*BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	eng := sess.Engine

	if reset {
		res := eng.Reset()
		s.record(sess, engine.ActionReset, res)
	}

	start := eng.Status()
	result := &BulkResult{
		RequestedCommands: len(commands),
		Success:           true,
		StartPos:          start.Position,
		StartShots:        start.ShotsRemaining,
		StartedFacing:     start.Facing,
	}

	// Limit commands to prevent abuse
	if len(commands) > engine.MaxBulkCommands {
		result.Truncated = true
		result.Limit = engine.MaxBulkCommands
		commands = commands[:engine.MaxBulkCommands]
	}

	if eng.IsGameOver() && len(commands) > 0 {
		result.Success = false
		result.StoppedReason = "game is over, reset to play again"
		result.StopReasonCode = "game_over"
		result.StoppedOnCommand = 1
		commands = nil
	}

	for i, raw := range commands {
		cmd, err := engine.ParseCommand(raw)
		if err != nil {
			res := engine.Result{Status: engine.Rejected, Event: engine.EventInvalidCommand, Message: err.Error()}
			s.record(sess, raw, res)
			result.Steps = append(result.Steps, StepInfo{
				Idx:          i + 1,
				Command:      raw,
				Status:       res.Status,
				Event:        res.Event,
				From:         eng.Position(),
				To:           eng.Position(),
				FacingBefore: eng.Facing(),
				FacingAfter:  eng.Facing(),
				ShotsBefore:  eng.ShotsRemaining(),
				ShotsAfter:   eng.ShotsRemaining(),
				Message:      res.Message,
			})
			result.Success = false
			result.StoppedReason = fmt.Sprintf("command %d rejected: %s", i+1, res.Message)
			result.StopReasonCode = "rejected"
			result.StoppedOnCommand = i + 1
			break
		}

		step, res := s.apply(sess, i+1, cmd)
		result.Steps = append(result.Steps, step)
		if res.Status == engine.Rejected {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("command %d rejected: %s", i+1, res.Message)
			result.StopReasonCode = "rejected"
			result.StoppedOnCommand = i + 1
			break
		}
		result.CommandsExecuted++
		if eng.IsGameOver() {
			result.StoppedOnCommand = i + 1
			break
		}
	}

	end := eng.Status()
	result.GameState = end
	result.EndPos = end.Position
	result.EndShots = end.ShotsRemaining
	result.EndFacing = end.Facing
	result.PhotosDelta = end.Photographed.Count() - start.Photographed.Count()
	result.GameOver = end.GameOver
	result.Message = end.Message

	// Ended by the game itself rather than by a stop condition above
	if result.GameOver && result.StopReasonCode == "" {
		if end.GameWon {
			result.StopReasonCode = "victory"
		} else {
			result.StopReasonCode = string(end.FailureReason)
		}
		result.StoppedReason = end.Message
	}

	s.logger.Info("commands executed",
		zap.String("session_id", sess.ID),
		zap.Int("requested", result.RequestedCommands),
		zap.Int("executed", result.CommandsExecuted),
		zap.String("stop_reason", result.StopReasonCode))

	return result, nil
}

// GetStatus retrieves the current game status
func (s *gameServiceImpl) GetStatus(ctx context.Context, sessionID string) (*engine.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Status(), nil
}

// Scan reads the drone's sensors without changing the game.
func (s *gameServiceImpl) Scan(ctx context.Context, sessionID string) (*ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	found := sess.Engine.Scan()
	if found == nil {
		found = []engine.Detection{}
	}
	return &ScanResult{
		Position:   sess.Engine.Position(),
		Facing:     sess.Engine.Facing(),
		Detections: found,
		Summary:    engine.FormatScan(found),
	}, nil
}

// GetHistory returns paginated command history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultHistoryLimit
	}
	if opts.Limit > MaxHistoryLimit {
		opts.Limit = MaxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []HistoryEntry{}
	if opts.Order == "desc" {
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = append(entries, history[start:end]...)
	}

	return &HistoryResponse{
		Entries:       entries,
		TotalCommands: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// Solve searches for the shortest winning plan from the session's current state.
// The search runs on a clone so the session stays available meanwhile.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string) (*SolutionResult, error) {
	s.mu.Lock()
	sess, err := s.lookup(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := sess.Engine.Clone()
	s.mu.Unlock()

	plan, err := solver.Solve(ctx, snapshot)
	if errors.Is(err, solver.ErrUnsolvable) {
		return &SolutionResult{Found: false, Commands: []string{}, Message: err.Error()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("solve session %s: %w", sessionID, err)
	}

	s.logger.Info("solution found",
		zap.String("session_id", sessionID),
		zap.Int("steps", len(plan.Commands)),
		zap.Int("explored", plan.Explored))

	return &SolutionResult{
		Found:    true,
		Commands: plan.Strings(),
		Steps:    len(plan.Commands),
		Pictures: plan.Pictures,
		Explored: plan.Explored,
		Message:  fmt.Sprintf("Win in %d commands using %d pictures.", len(plan.Commands), plan.Pictures),
	}, nil
}

// ListConfigs returns available game layouts
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game layout
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig validates and saves a game layout
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("layout saved", zap.String("config", configName))
	return nil
}
