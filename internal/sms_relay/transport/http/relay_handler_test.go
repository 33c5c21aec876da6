package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	httptransport "github.com/Vsirotkin/SMS/internal/sms_relay/transport/http"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRelayService struct {
	mock.Mock
}

func (m *MockRelayService) EnqueueMessage(ctx context.Context, recipient, text, credential string) (*domain.BufferEntry, error) {
	args := m.Called(ctx, recipient, text, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BufferEntry), args.Error(1)
}

func (m *MockRelayService) CreateConfig(ctx context.Context, cfg domain.GatewayConfig) (*domain.GatewayConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayConfig), args.Error(1)
}

func (m *MockRelayService) CreateTemplateText(ctx context.Context, text string) (*domain.TemplateText, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TemplateText), args.Error(1)
}

func newTestRouter(svc httptransport.RelayService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := httptransport.NewRelayHandler(svc, logger, validator.New())
	return httptransport.NewRouter(handler, "sms_relay_service", logger)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRelayHandler_Welcome(t *testing.T) {
	rr := doRequest(t, newTestRouter(new(MockRelayService)), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Welcome to the SMS service!"}`, rr.Body.String())
}

func TestRelayHandler_SendSMS(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		svc := new(MockRelayService)
		svc.On("EnqueueMessage", mock.Anything, "79990000000", "1234", "pw1").
			Return(&domain.BufferEntry{ID: 17, Recipient: "79990000000", Text: "1234"}, nil).Once()

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/send_sms",
			`{"recipient":"79990000000","text":"1234","password":"pw1"}`)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		var resp httptransport.SendSMSResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(17), resp.EntryID)
		assert.NotEmpty(t, resp.Message)
		svc.AssertExpectations(t)
	})

	t.Run("TrailingSlash", func(t *testing.T) {
		svc := new(MockRelayService)
		svc.On("EnqueueMessage", mock.Anything, "79990000000", "Hello", "").
			Return(&domain.BufferEntry{ID: 1}, nil).Once()

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/send_sms/", `{"recipient":"79990000000","text":"Hello"}`)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("EmptyTextAccepted", func(t *testing.T) {
		svc := new(MockRelayService)
		svc.On("EnqueueMessage", mock.Anything, "79990000000", "", "pw1").
			Return(&domain.BufferEntry{ID: 2, Recipient: "79990000000"}, nil).Once()

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/send_sms",
			`{"recipient":"79990000000","text":"","password":"pw1"}`)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := new(MockRelayService)
		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/send_sms", `{"recipient":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid request payload")
		svc.AssertNotCalled(t, "EnqueueMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingRecipient", func(t *testing.T) {
		svc := new(MockRelayService)
		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/send_sms", `{"text":"Hello"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Validation failed")
		svc.AssertNotCalled(t, "EnqueueMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StorageError", func(t *testing.T) {
		svc := new(MockRelayService)
		svc.On("EnqueueMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("buffering message: disk full"))

		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/send_sms", `{"recipient":"1","text":"Hello"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Failed to queue message"}`, rr.Body.String())
	})
}

func TestRelayHandler_CreateConfig(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		svc := new(MockRelayService)
		want := domain.GatewayConfig{
			PrimaryURL:        "http://main.example/send",
			BackupURL:         "http://backup.example/send",
			PrimaryCredential: "secret",
			BackupAccountID:   "api1",
			RegionRules:       map[string]any{"RU": "main"},
		}
		created := want
		created.ID = 1
		svc.On("CreateConfig", mock.Anything, want).Return(&created, nil).Once()

		body, _ := json.Marshal(map[string]any{
			"main_gateway_url":      want.PrimaryURL,
			"backup_gateway_url":    want.BackupURL,
			"main_gateway_password": want.PrimaryCredential,
			"backup_gateway_api_id": want.BackupAccountID,
			"regions":               want.RegionRules,
		})
		req := httptest.NewRequest(http.MethodPost, "/config", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got domain.GatewayConfig
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, created, got)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		svc := new(MockRelayService)
		rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/config",
			`{"main_gateway_url":"not a url","backup_gateway_url":"http://backup"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "CreateConfig", mock.Anything, mock.Anything)
	})
}

func TestRelayHandler_CreateTemplateText(t *testing.T) {
	svc := new(MockRelayService)
	svc.On("CreateTemplateText", mock.Anything, "Ваш код").Return(&domain.TemplateText{ID: 13, Text: "Ваш код"}, nil).Once()

	rr := doRequest(t, newTestRouter(svc), http.MethodPost, "/textsms", `{"text":"Ваш код"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":13,"text":"Ваш код"}`, rr.Body.String())

	rr = doRequest(t, newTestRouter(svc), http.MethodPost, "/textsms", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertExpectations(t)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(new(MockRelayService))

	rr := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")

	rr = doRequest(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sms_relay_http_requests_total")
}
