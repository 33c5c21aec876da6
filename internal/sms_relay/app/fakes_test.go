package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryStore is an in-memory implementation of all three repositories.
type memoryStore struct {
	mu        sync.Mutex
	nextID    int64
	entries   map[int64]domain.BufferEntry
	templates []domain.TemplateText
	configs   []domain.GatewayConfig

	listErr   error
	deleteErr error
	deletes   map[int64]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[int64]domain.BufferEntry{}, deletes: map[int64]int{}}
}

func (s *memoryStore) ListBufferEntries(_ context.Context) ([]domain.BufferEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.BufferEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) InsertBufferEntry(_ context.Context, recipient, text, credential string) (*domain.BufferEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e := domain.BufferEntry{ID: s.nextID, Recipient: recipient, Text: text, Credential: credential, CreatedAt: time.Now().UTC()}
	s.entries[e.ID] = e
	return &e, nil
}

func (s *memoryStore) DeleteBufferEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes[id]++
	delete(s.entries, id)
	return nil
}

func (s *memoryStore) snapshot() []domain.BufferEntry {
	entries, _ := s.ListBufferEntries(context.Background())
	return entries
}

func (s *memoryStore) ListTemplateTexts(_ context.Context) ([]domain.TemplateText, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TemplateText(nil), s.templates...), nil
}

func (s *memoryStore) CreateTemplateText(_ context.Context, text string) (*domain.TemplateText, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.TemplateText{ID: int64(len(s.templates) + 1), Text: text}
	s.templates = append(s.templates, t)
	return &t, nil
}

func (s *memoryStore) GetActiveConfig(_ context.Context) (*domain.GatewayConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.configs) == 0 {
		return nil, nil
	}
	cfg := s.configs[0]
	return &cfg, nil
}

func (s *memoryStore) CreateConfig(_ context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.ID = int64(len(s.configs) + 1)
	s.configs = append(s.configs, cfg)
	return &cfg, nil
}

// attemptCall records one gateway attempt.
type attemptCall struct {
	Leg      domain.GatewayLeg
	Endpoint string
	Params   domain.DeliveryParams
}

// scriptedAttempter answers attempts with a per-leg function and records calls.
type scriptedAttempter struct {
	mu      sync.Mutex
	calls   []attemptCall
	respond func(call attemptCall) domain.DeliveryResult
}

func (a *scriptedAttempter) Attempt(_ context.Context, leg domain.GatewayLeg, endpoint string, params domain.DeliveryParams) domain.DeliveryResult {
	call := attemptCall{Leg: leg, Endpoint: endpoint, Params: params}
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
	return a.respond(call)
}

func (a *scriptedAttempter) recorded() []attemptCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]attemptCall(nil), a.calls...)
}

func alwaysDelivered(call attemptCall) domain.DeliveryResult {
	return domain.Delivered(call.Leg, 200, []byte(`{"status":"ok"}`))
}

func alwaysFailed(call attemptCall) domain.DeliveryResult {
	return domain.Failed(call.Leg, 500, domain.ErrGatewayRejected)
}

// MockGatewayAttempter is a testify mock of GatewayAttempter.
type MockGatewayAttempter struct {
	mock.Mock
}

func (m *MockGatewayAttempter) Attempt(ctx context.Context, leg domain.GatewayLeg, endpoint string, params domain.DeliveryParams) domain.DeliveryResult {
	args := m.Called(ctx, leg, endpoint, params)
	return args.Get(0).(domain.DeliveryResult)
}

// MockConfigRepository is a testify mock of domain.ConfigRepository.
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) GetActiveConfig(ctx context.Context) (*domain.GatewayConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayConfig), args.Error(1)
}

func (m *MockConfigRepository) CreateConfig(ctx context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayConfig), args.Error(1)
}

// MockTemplateRepository is a testify mock of domain.TemplateRepository.
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) ListTemplateTexts(ctx context.Context) ([]domain.TemplateText, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TemplateText), args.Error(1)
}

func (m *MockTemplateRepository) CreateTemplateText(ctx context.Context, text string) (*domain.TemplateText, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TemplateText), args.Error(1)
}

// MockPassTrigger is a testify mock of PassTrigger.
type MockPassTrigger struct {
	mock.Mock
}

func (m *MockPassTrigger) Trigger(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var errDB = errors.New("database is on fire")
