package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
)

// Sentinel errors shared by the storage implementations.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrInvalidCommand       = errors.New("invalid command")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, sensors bool) (*CommandResult, error)
	Turn(ctx context.Context, sessionID, direction string, sensors bool) (*CommandResult, error)
	TakePicture(ctx context.Context, sessionID string, sensors bool) (*CommandResult, error)
	Execute(ctx context.Context, sessionID string, commands []string, reset bool) (*BulkResult, error)
	Reset(ctx context.Context, sessionID string) (*CommandResult, error)

	// Game State
	GetStatus(ctx context.Context, sessionID string) (*engine.Status, error)
	Scan(ctx context.Context, sessionID string) (*ScanResult, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Solve(ctx context.Context, sessionID string) (*SolutionResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game layout loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. The engine is owned by the
// session; all access goes through the service, which serializes it.
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
	History        []HistoryEntry
}
