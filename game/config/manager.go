package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is the layout preferred as the default.
const DefaultConfigID = "classic"

// layoutExtensions in lookup order.
var layoutExtensions = []string{".json", ".yaml", ".yml"}

var configIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

var _ service.ConfigManager = (*Manager)(nil)

// Manager handles layout loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	logger        *zap.Logger
	mu            sync.RWMutex
}

// NewManager creates a new layout manager for configDir. A nil logger disables logging.
func NewManager(configDir string, logger *zap.Logger) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
		logger:    logger.Named("config"),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// splitName turns "classic", "classic.json" or "classic.yaml" into an ID
// and an optional explicit extension.
func splitName(name string) (string, string) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range layoutExtensions {
		if ext == known {
			return strings.TrimSuffix(name, filepath.Ext(name)), ext
		}
	}
	return name, ""
}

// LoadConfig loads a layout by ID. The returned layout is a copy.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id, ext := splitName(name)
	if !configIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config.Clone(), nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config.Clone(), nil
	}

	candidates := layoutExtensions
	if ext != "" {
		candidates = []string{ext}
	}
	for _, candidate := range candidates {
		path := filepath.Join(m.configDir, id+candidate)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		m.configs[id] = config
		m.logger.Debug("layout loaded", zap.String("config", id), zap.String("path", path))
		return config.Clone(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// ListConfigs returns information about every valid layout in the directory
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := FormatFromPath(entry.Name())
		if err != nil {
			continue
		}
		id, _ := splitName(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			m.logger.Warn("skipping invalid layout",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			GridSize:    config.GridSize,
			ShotBudget:  config.ShotBudget,
			Trees:       len(config.Trees),
			Format:      format,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns a copy of the default layout
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig.Clone()
}

// SetDefault sets the default layout by ID
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached layout and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// Count returns the number of cached layouts
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig prefers classic, then the first listed layout, then the
// compiled-in canonical layout.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigID)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil {
			return listErr
		}
		if len(configs) == 0 {
			m.logger.Info("no layouts on disk, using the built-in classic layout",
				zap.String("dir", m.configDir))
			config = engine.DefaultConfig()
		} else if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a layout and writes it to disk. The extension of
// name picks the format; JSON is used when there is none.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	id, ext := splitName(name)
	if !configIDPattern.MatchString(id) {
		return fmt.Errorf("%w: layout id %q must be letters, digits, '-' or '_'", ErrInvalidConfig, id)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if ext == "" {
		ext = ".json"
	}
	format, err := FormatFromPath(ext)
	if err != nil {
		return err
	}

	data, err := EncodeLayout(config, format)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// One file per ID, so a format change does not leave a stale twin behind
	for _, other := range layoutExtensions {
		if other != ext {
			_ = os.Remove(filepath.Join(m.configDir, id+other))
		}
	}

	path := filepath.Join(m.configDir, id+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	m.configs[id] = config.Clone()
	m.logger.Info("layout saved", zap.String("config", id), zap.String("path", path))

	return nil
}
