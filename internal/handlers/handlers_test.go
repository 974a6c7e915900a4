package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/leaderboard"
	"github.com/vancomm/endless-mines/internal/metrics"
	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/repository"
	"github.com/vancomm/endless-mines/internal/sessionlock"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[int64]repository.GameSession
	players  map[string]repository.Player
	updates  int
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[int64]repository.GameSession),
		players:  make(map[string]repository.Player),
	}
}

func (m *memStore) CreateGameSession(
	_ context.Context, params repository.CreateGameSessionParams,
) (*repository.GameSession, error) {
	buf, err := params.State.Bytes()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s := repository.GameSession{
		GameSessionID: int64(len(m.sessions) + 1),
		PlayerID:      params.PlayerID,
		Seed:          int64(params.Seed),
		Score:         params.State.Score(),
		Lives:         params.State.Lives(),
		HighScore:     params.State.HighScore(),
		GameOver:      params.State.GameOver(),
		State:         buf,
		StartedAt:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.sessions[s.GameSessionID] = s
	return &s, nil
}

func (m *memStore) FetchGameSession(_ context.Context, id int64) (*repository.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (m *memStore) UpdateGameSession(
	_ context.Context, id int64, seed uint64, state *mines.GameState,
) (*repository.GameSession, error) {
	buf, err := state.Bytes()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	s.Seed = int64(seed)
	s.Score, s.Lives, s.HighScore = state.Score(), state.Lives(), state.HighScore()
	s.GameOver, s.State, s.UpdatedAt = state.GameOver(), buf, time.Now()
	if s.GameOver && s.EndedAt == nil {
		s.EndedAt = &s.UpdatedAt
	} else if !s.GameOver {
		s.EndedAt = nil
	}
	m.sessions[id] = s
	m.updates++
	return &s, nil
}

func (m *memStore) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

func (m *memStore) CreatePlayer(
	_ context.Context, params repository.CreatePlayerParams,
) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	p := repository.Player{
		PlayerID:     int64(len(m.players) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	m.players[p.Username] = p
	return &p, nil
}

func (m *memStore) FetchPlayer(_ context.Context, username string) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

type memBoard struct {
	mu        sync.Mutex
	submitted []leaderboard.Entry
	limit     int
}

func (b *memBoard) Submit(_ context.Context, entry leaderboard.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitted = append(b.submitted, entry)
	return nil
}

func (b *memBoard) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limit = limit
	return b.submitted, nil
}

// openParams gives a board without mines where a single click opens exactly
// FloodCap squares.
func openParams() mines.Params {
	return mines.Params{
		MineProbability: 0,
		StartingLives:   3,
		LifeBonus:       1000,
		FloodCap:        40,
		SafeRadius:      -1,
	}
}

type fixture struct {
	store   *memStore
	board   *memBoard
	metrics *metrics.Metrics
	game    *GameHandler
}

func newFixture(t *testing.T, params mines.Params) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	f := &fixture{
		store:   newMemStore(),
		board:   &memBoard{},
		metrics: metrics.New(),
	}
	ws := &config.WebSocket{
		ReadLimit:    4096,
		WriteTimeout: time.Second,
		PongTimeout:  time.Minute,
	}
	// seeds count up from 42
	var seeds atomic.Uint64
	seeds.Store(41)
	f.game = NewGameHandler(
		log, f.store, sessionlock.NewLocal(), f.board, f.metrics, ws,
		params, func() uint64 { return seeds.Add(1) },
	)
	return f
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
