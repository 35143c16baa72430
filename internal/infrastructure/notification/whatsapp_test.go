package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, url string) *WhatsAppClient {
	t.Helper()
	return NewWhatsAppClient(config.WhatsAppConfig{
		BaseURL:       url,
		PhoneNumberID: "1055",
		AccessToken:   "secret-token",
		Timeout:       2 * time.Second,
	}, zaptest.NewLogger(t), WithRetryPolicy(2, time.Millisecond))
}

func TestWhatsAppClient_SendText(t *testing.T) {
	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1055/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL+"/").SendText(context.Background(), "+591 712-34567", "Tu pedido esta listo")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "59171234567", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "Tu pedido esta listo", got.Text.Body)
}

func TestWhatsAppClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv.URL).SendText(context.Background(), "71234567", "hola"))
	assert.EqualValues(t, 3, calls.Load())
}

func TestWhatsAppClient_RecoversAfterOneFailure(t *testing.T) {
	var (
		calls  atomic.Int32
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg textMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		mu.Lock()
		bodies = append(bodies, msg.Text.Body)
		mu.Unlock()
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"Service temporarily unavailable","code":2}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv.URL).SendText(context.Background(), "71234567", "Pedido PN-20261017-0004"))
	assert.EqualValues(t, 2, calls.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Pedido PN-20261017-0004", "Pedido PN-20261017-0004"}, bodies, "body is replayed on retry")
}

func TestWhatsAppClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTestClient(t, url).SendText(context.Background(), "71234567", "hola")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "whatsapp:")
}

func TestWhatsAppClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SendText(context.Background(), "71234567", "hola")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.EqualValues(t, 3, calls.Load(), "first attempt plus two retries")
}

func TestWhatsAppClient_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Recipient phone number not in allowed list","type":"OAuthException","code":131030}}`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SendText(context.Background(), "71234567", "hola")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 131030, apiErr.Code)
	assert.False(t, apiErr.Temporary())
	assert.Contains(t, err.Error(), "not in allowed list")
	assert.EqualValues(t, 1, calls.Load())
}

func TestWhatsAppClient_NotConfigured(t *testing.T) {
	c := NewWhatsAppClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	assert.False(t, c.Configured())
	assert.ErrorIs(t, c.SendText(context.Background(), "71234567", "hola"), ErrWhatsAppNotConfigured)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"71234567", "59171234567"},
		{"+591 7123 4567", "59171234567"},
		{"(591) 61234567", "59161234567"},
		{"22441122", "22441122"},
		{"123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), tt.in)
	}
	assert.Equal(t, "*******4567", maskPhone("59171234567"))
}
