package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/dronesafari/game/config"
	"github.com/wricardo/mcp-training/dronesafari/game/engine"
	"github.com/wricardo/mcp-training/dronesafari/game/service"
	"github.com/wricardo/mcp-training/dronesafari/game/session"
	"github.com/wricardo/mcp-training/dronesafari/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc        func(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error)
	TurnFunc        func(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error)
	TakePictureFunc func(ctx context.Context, sessionID string, sensors bool) (*service.CommandResult, error)
	ExecuteFunc     func(ctx context.Context, sessionID string, commands []string, reset bool) (*service.BulkResult, error)
	ResetFunc       func(ctx context.Context, sessionID string) (*service.CommandResult, error)

	// Game State
	GetStatusFunc  func(ctx context.Context, sessionID string) (*engine.Status, error)
	ScanFunc       func(ctx context.Context, sessionID string) (*service.ScanResult, error)
	GetHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	SolveFunc      func(ctx context.Context, sessionID string) (*service.SolutionResult, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func applied(event engine.Event) *service.CommandResult {
	return &service.CommandResult{
		Status:    engine.Applied,
		Event:     event,
		GameState: engine.NewEngineWithDefaults().Status(),
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, sensors)
	}
	return applied(engine.EventMoved), nil
}

func (m *MockGameService) Turn(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error) {
	if m.TurnFunc != nil {
		return m.TurnFunc(ctx, sessionID, direction, sensors)
	}
	return applied(engine.EventTurned), nil
}

func (m *MockGameService) TakePicture(ctx context.Context, sessionID string, sensors bool) (*service.CommandResult, error) {
	if m.TakePictureFunc != nil {
		return m.TakePictureFunc(ctx, sessionID, sensors)
	}
	return applied(engine.EventNothingInRange), nil
}

func (m *MockGameService) Execute(ctx context.Context, sessionID string, commands []string, reset bool) (*service.BulkResult, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, sessionID, commands, reset)
	}
	return &service.BulkResult{
		CommandsExecuted:  len(commands),
		RequestedCommands: len(commands),
		Success:           true,
		GameState:         engine.NewEngineWithDefaults().Status(),
	}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return applied(engine.EventReset), nil
}

func (m *MockGameService) GetStatus(ctx context.Context, sessionID string) (*engine.Status, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, sessionID)
	}
	return engine.NewEngineWithDefaults().Status(), nil
}

func (m *MockGameService) Scan(ctx context.Context, sessionID string) (*service.ScanResult, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, sessionID)
	}
	return &service.ScanResult{Detections: []engine.Detection{}}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Entries: []service.HistoryEntry{}, Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) Solve(ctx context.Context, sessionID string) (*service.SolutionResult, error) {
	if m.SolveFunc != nil {
		return m.SolveFunc(ctx, sessionID)
	}
	return &service.SolutionResult{Found: true, Commands: []string{"picture"}, Steps: 1, Pictures: 1}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	cfg := engine.DefaultConfig()
	cfg.Name = configName
	return cfg, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(nil)
	go hub.Run(ctx)
	return NewServer(mockService, hub, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %s)", err, w.Body.String())
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return &service.SessionInfo{ID: "ab12cd34", ConfigName: "classic", CreatedAt: time.Now()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12cd34" {
					t.Errorf("Expected session ID ab12cd34, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with config_id",
			requestBody: map[string]string{"config_id": "thicket"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "s1", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "thicket" {
					t.Errorf("Expected config name 'thicket', got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "config_name is accepted as well",
			requestBody: map[string]string{"config_name": "waterhole"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "waterhole" {
						t.Errorf("Expected config name 'waterhole', got %s", configName)
					}
					return &service.SessionInfo{ID: "s2", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: 'nope'", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSessionMalformedBody(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{not json"))
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := func() []*service.SessionInfo {
		return []*service.SessionInfo{
			{ID: "a", CreatedAt: base, LastAccessedAt: base.Add(3 * time.Minute)},
			{ID: "b", CreatedAt: base.Add(time.Minute), LastAccessedAt: base.Add(time.Minute)},
			{ID: "c", CreatedAt: base.Add(2 * time.Minute), LastAccessedAt: base.Add(2 * time.Minute)},
		}
	}

	tests := []struct {
		name     string
		query    string
		wantIDs  []string
		wantSort string
		total    int
	}{
		{name: "default sorts by access, newest first", query: "", wantIDs: []string{"a", "c", "b"}, wantSort: "accessed", total: 3},
		{name: "created ascending", query: "?sort=created&order=asc", wantIDs: []string{"a", "b", "c"}, wantSort: "created", total: 3},
		{name: "limit", query: "?sort=created&limit=2", wantIDs: []string{"c", "b"}, wantSort: "created", total: 3},
		{name: "bad limit ignored", query: "?limit=zero", wantIDs: []string{"a", "c", "b"}, wantSort: "accessed", total: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
					return sessions(), nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sort     string                 `json:"sort"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Sort != tt.wantSort {
				t.Errorf("Expected sort %s, got %s", tt.wantSort, resp.Sort)
			}
			if resp.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, resp.Total)
			}
			if resp.Count != len(tt.wantIDs) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.wantIDs), resp.Count)
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSessionNotFound(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
		},
	}
	server := setupTestServer(t, mockService)

	for _, method := range []string{"GET", "DELETE"} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest(method, "/api/sessions/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", method, w.Code)
		}
	}
}

func TestCommandHandlers(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           interface{}
		rawBody        string
		handler        func(*Server) http.HandlerFunc
		setupMock      func(*testing.T, *MockGameService)
		expectedStatus int
		wantStatus     engine.ResultStatus
	}{
		{
			name:    "move forward with sensors",
			path:    "move",
			body:    map[string]interface{}{"direction": "forward", "sensors": true},
			handler: func(s *Server) http.HandlerFunc { return s.handleMove },
			setupMock: func(t *testing.T, m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error) {
					if direction != "forward" || !sensors {
						t.Errorf("Expected forward with sensors, got %s sensors=%v", direction, sensors)
					}
					return applied(engine.EventMoved), nil
				}
			},
			expectedStatus: http.StatusOK,
			wantStatus:     engine.Applied,
		},
		{
			name:    "rejected move is still 200",
			path:    "move",
			body:    map[string]interface{}{"direction": "up"},
			handler: func(s *Server) http.HandlerFunc { return s.handleMove },
			setupMock: func(t *testing.T, m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error) {
					return &service.CommandResult{Status: engine.Rejected, Event: engine.EventInvalidCommand}, nil
				}
			},
			expectedStatus: http.StatusOK,
			wantStatus:     engine.Rejected,
		},
		{
			name:           "malformed move body",
			path:           "move",
			rawBody:        "direction=forward",
			handler:        func(s *Server) http.HandlerFunc { return s.handleMove },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "turn left",
			path:    "turn",
			body:    map[string]interface{}{"direction": "left"},
			handler: func(s *Server) http.HandlerFunc { return s.handleTurn },
			setupMock: func(t *testing.T, m *MockGameService) {
				m.TurnFunc = func(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error) {
					if direction != "left" {
						t.Errorf("Expected left, got %s", direction)
					}
					return applied(engine.EventTurned), nil
				}
			},
			expectedStatus: http.StatusOK,
			wantStatus:     engine.Applied,
		},
		{
			name:           "picture without a body",
			path:           "picture",
			handler:        func(s *Server) http.HandlerFunc { return s.handlePicture },
			expectedStatus: http.StatusOK,
			wantStatus:     engine.Applied,
		},
		{
			name:    "picture after game over is ignored",
			path:    "picture",
			body:    map[string]interface{}{"sensors": false},
			handler: func(s *Server) http.HandlerFunc { return s.handlePicture },
			setupMock: func(t *testing.T, m *MockGameService) {
				m.TakePictureFunc = func(ctx context.Context, sessionID string, sensors bool) (*service.CommandResult, error) {
					return &service.CommandResult{Status: engine.Ignored, Event: engine.EventGameOver}, nil
				}
			},
			expectedStatus: http.StatusOK,
			wantStatus:     engine.Ignored,
		},
		{
			name:           "reset",
			path:           "reset",
			handler:        func(s *Server) http.HandlerFunc { return s.handleReset },
			expectedStatus: http.StatusOK,
			wantStatus:     engine.Applied,
		},
		{
			name:    "unknown session",
			path:    "move",
			body:    map[string]interface{}{"direction": "forward"},
			handler: func(s *Server) http.HandlerFunc { return s.handleMove },
			setupMock: func(t *testing.T, m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, sensors bool) (*service.CommandResult, error) {
					return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(t, mockService)
			}
			server := setupTestServer(t, mockService)

			var req *http.Request
			if tt.rawBody != "" {
				req = httptest.NewRequest("POST", "/api/sessions/sess-1/"+tt.path, strings.NewReader(tt.rawBody))
			} else {
				req = makeRequest("POST", "/api/sessions/sess-1/"+tt.path, tt.body)
			}
			req = mux.SetURLVars(req, map[string]string{"id": "sess-1"})
			w := httptest.NewRecorder()

			tt.handler(server)(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != "" {
				var resp service.CommandResult
				parseResponse(t, w, &resp)
				if resp.Status != tt.wantStatus {
					t.Errorf("Expected result status %s, got %s", tt.wantStatus, resp.Status)
				}
			}
		})
	}
}

func TestCommandsHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		wantCommands   []string
		wantReset      bool
	}{
		{
			name:           "script",
			body:           map[string]interface{}{"commands": []string{"turn left", "move forward", "picture"}},
			expectedStatus: http.StatusOK,
			wantCommands:   []string{"turn left", "move forward", "picture"},
		},
		{
			name:           "reset only",
			body:           map[string]interface{}{"reset": true},
			expectedStatus: http.StatusOK,
			wantReset:      true,
		},
		{
			name:           "empty",
			body:           map[string]interface{}{"commands": []string{}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCommands []string
			var gotReset bool
			mockService := &MockGameService{
				ExecuteFunc: func(ctx context.Context, sessionID string, commands []string, reset bool) (*service.BulkResult, error) {
					gotCommands, gotReset = commands, reset
					return &service.BulkResult{
						CommandsExecuted:  len(commands),
						RequestedCommands: len(commands),
						Success:           true,
						GameState:         engine.NewEngineWithDefaults().Status(),
					}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/sess-1/commands", tt.body))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if w.Code != http.StatusOK {
				return
			}
			if strings.Join(gotCommands, "|") != strings.Join(tt.wantCommands, "|") {
				t.Errorf("Expected commands %v, got %v", tt.wantCommands, gotCommands)
			}
			if gotReset != tt.wantReset {
				t.Errorf("Expected reset=%v, got %v", tt.wantReset, gotReset)
			}
			var resp service.BulkResult
			parseResponse(t, w, &resp)
			if resp.CommandsExecuted != len(tt.wantCommands) {
				t.Errorf("Expected %d executed, got %d", len(tt.wantCommands), resp.CommandsExecuted)
			}
		})
	}
}

func TestGetHistoryQueryParsing(t *testing.T) {
	tests := []struct {
		query string
		want  service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: service.DefaultHistoryLimit, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: service.DefaultHistoryLimit, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Entries: []service.HistoryEntry{}}, nil
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/sess-1/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.want {
				t.Errorf("Expected options %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestConfigHandlers(t *testing.T) {
	var saved *engine.GameConfig
	var savedID string
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "classic", GridSize: 12}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "classic" && configName != "classic.json" {
				return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, configName)
			}
			return engine.DefaultConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.GameConfig) error {
			savedID, saved = configName, config
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
		var resp []service.ConfigInfo
		parseResponse(t, w, &resp)
		if len(resp) != 1 || resp[0].ConfigID != "classic" {
			t.Errorf("Unexpected list %+v", resp)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic.json", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var resp engine.GameConfig
		parseResponse(t, w, &resp)
		if resp.GridSize != 12 {
			t.Errorf("Expected grid size 12, got %d", resp.GridSize)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/savannah", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("schema", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/schema", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !bytes.Equal(w.Body.Bytes(), config.Schema()) {
			t.Error("Schema endpoint should serve the embedded layout schema")
		}
	})

	t.Run("create", func(t *testing.T) {
		layout := engine.DefaultConfig()
		layout.Name = "copy"
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", layout))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		if savedID != "copy" || saved == nil || saved.GridSize != 12 {
			t.Errorf("Unexpected save %q %+v", savedID, saved)
		}
	})

	t.Run("create rejects schema violations", func(t *testing.T) {
		saved = nil
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", map[string]interface{}{
			"name":      "tiny",
			"grid_size": 2,
		}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
		if saved != nil {
			t.Error("Invalid layout should not be saved")
		}
	})
}

func TestUnifiedSessions(t *testing.T) {
	classic := engine.DefaultConfig()
	all := []*service.SessionInfo{
		{ID: "a", ConfigName: "classic", GameConfig: classic},
		{ID: "b", ConfigName: "thicket"},
		{ID: "c", ConfigName: "classic", GameConfig: classic},
	}
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) { return all, nil },
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			for _, s := range all {
				if s.ID == sessionID {
					return s, nil
				}
			}
			return nil, service.ErrSessionNotFound
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		query    string
		wantIDs  []string
		wantGrid int
	}{
		{"", []string{"a", "b", "c"}, 12},
		{"?configName=classic", []string{"a", "c"}, 12},
		{"?sessionIds=b,%20missing,c", []string{"b", "c"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/unified"+tt.query, nil))

			var resp struct {
				GridSize int `json:"grid_size"`
				Sessions []struct {
					SessionID string `json:"session_id"`
				} `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.GridSize != tt.wantGrid {
				t.Errorf("Expected grid size %d, got %d", tt.wantGrid, resp.GridSize)
			}
			if len(resp.Sessions) != len(tt.wantIDs) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.wantIDs), len(resp.Sessions))
			}
			for i, id := range tt.wantIDs {
				if resp.Sessions[i].SessionID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].SessionID)
				}
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))

	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", resp["status"])
	}
}

func TestWebSocketPreconditions(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
	}{
		{name: "Missing session parameter", queryParams: "", expectedStatus: http.StatusBadRequest},
		{name: "Unknown session", queryParams: "?session=invalid", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
				},
			}
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// liveLayout puts every animal two cells from the start so the whole game
// can be won by turning in place.
func liveLayout() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "live",
		GridSize:    7,
		ShotBudget:  3,
		Start:       engine.Position{Row: 3, Col: 3},
		StartFacing: "North",
		Targets: engine.TargetLayout{
			Zebra:    engine.Position{Row: 5, Col: 3},
			Elephant: engine.Position{Row: 3, Col: 5},
			Oryx:     engine.Position{Row: 1, Col: 3},
		},
	}
}

// newLiveServer wires the real service, session store and layout manager
// behind an httptest server.
func newLiveServer(t *testing.T) (*httptest.Server, *websocket.Hub) {
	t.Helper()

	dir := t.TempDir()
	data, err := config.EncodeLayout(liveLayout(), config.FormatJSON)
	if err != nil {
		t.Fatalf("EncodeLayout: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "live.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	configs, err := config.NewManager(dir, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(nil)
	go hub.Run(ctx)

	svc := service.NewGameService(session.NewManager(), configs, nil)
	ts := httptest.NewServer(NewServer(svc, hub, nil))
	t.Cleanup(ts.Close)
	return ts, hub
}

func postJSON(t *testing.T, url string, body interface{}, target interface{}) int {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, url string, target interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestLiveGame(t *testing.T) {
	ts, hub := newLiveServer(t)

	var sess service.SessionInfo
	if code := postJSON(t, ts.URL+"/api/sessions", map[string]string{"config_id": "live"}, &sess); code != http.StatusCreated {
		t.Fatalf("create session: status %d", code)
	}
	base := ts.URL + "/api/sessions/" + sess.ID

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + sess.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sess.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	var scan service.ScanResult
	getJSON(t, base+"/scan", &scan)
	if len(scan.Detections) != 3 {
		t.Errorf("Expected 3 detections at the start, got %d", len(scan.Detections))
	}

	var solution service.SolutionResult
	getJSON(t, base+"/solution", &solution)
	if !solution.Found || solution.Pictures != 3 {
		t.Fatalf("Expected a three-picture solution, got %+v", solution)
	}

	var rejected service.CommandResult
	postJSON(t, base+"/move", map[string]string{"direction": "up"}, &rejected)
	if rejected.Status != engine.Rejected {
		t.Errorf("Expected 'up' to be rejected, got %s", rejected.Status)
	}

	var pic service.CommandResult
	if code := postJSON(t, base+"/picture", nil, &pic); code != http.StatusOK {
		t.Fatalf("picture: status %d", code)
	}
	if pic.Event != engine.EventPhotographed {
		t.Errorf("Expected the zebra to be photographed, got %s", pic.Event)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read websocket: %v", err)
	}
	if msg.Event != websocket.EventStateUpdate || msg.GameState == nil || msg.GameState.ShotsTaken != 1 {
		t.Errorf("Unexpected websocket message %+v", msg)
	}

	var bulk service.BulkResult
	postJSON(t, base+"/commands", map[string]interface{}{
		"commands": []string{"turn right", "picture", "turn right", "picture", "turn right"},
	}, &bulk)
	if !bulk.GameOver || bulk.StopReasonCode != "victory" {
		t.Errorf("Expected victory, got %+v", bulk)
	}
	if bulk.CommandsExecuted != 4 || bulk.StoppedOnCommand != 4 {
		t.Errorf("Expected to stop after command 4, executed %d stopped on %d", bulk.CommandsExecuted, bulk.StoppedOnCommand)
	}

	var status engine.Status
	getJSON(t, base+"/status", &status)
	if !status.GameWon || status.Photographed.Count() != 3 {
		t.Errorf("Expected a won game, got won=%v photographed=%d", status.GameWon, status.Photographed.Count())
	}

	var history service.HistoryResponse
	getJSON(t, base+"/history?order=asc&limit=100", &history)
	if history.TotalCommands != 6 {
		t.Errorf("Expected 6 history entries, got %d", history.TotalCommands)
	}

	var ignored service.CommandResult
	postJSON(t, base+"/turn", map[string]string{"direction": "left"}, &ignored)
	if ignored.Status != engine.Ignored || ignored.Event != engine.EventGameOver {
		t.Errorf("Expected command after victory to be ignored, got %s/%s", ignored.Status, ignored.Event)
	}

	req, _ := http.NewRequest("DELETE", base, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: status %d", resp.StatusCode)
	}
	if code := getJSON(t, base+"/status", nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", code)
	}
}
