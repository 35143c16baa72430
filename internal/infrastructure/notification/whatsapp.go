package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ErrWhatsAppNotConfigured is returned when the phone number ID or token is missing
var ErrWhatsAppNotConfigured = errors.New("whatsapp: client not configured")

// Messenger sends short text messages to a phone number
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
}

// APIError is a non-2xx answer from the Cloud API
type APIError struct {
	Status  int
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("whatsapp: http %d", e.Status)
	}
	return fmt.Sprintf("whatsapp: http %d: %s (code %d)", e.Status, e.Message, e.Code)
}

// Temporary reports whether the request may succeed when retried
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// WhatsAppClient talks to the WhatsApp Cloud API messages endpoint
type WhatsAppClient struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
	logger     *zap.Logger
	retryMax   int
	waitMin    time.Duration
	waitMax    time.Duration
}

// WhatsAppOption configures a WhatsAppClient
type WhatsAppOption func(*WhatsAppClient)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) WhatsAppOption {
	return func(w *WhatsAppClient) { w.httpClient = c }
}

// WithRetryPolicy sets how many retries follow the first attempt and the
// shortest wait between them
func WithRetryPolicy(retries int, wait time.Duration) WhatsAppOption {
	return func(w *WhatsAppClient) {
		w.retryMax = retries
		w.waitMin = wait
		w.waitMax = 10 * wait
	}
}

// NewWhatsAppClient creates a client for cfg
func NewWhatsAppClient(cfg config.WhatsAppConfig, logger *zap.Logger, opts ...WhatsAppOption) *WhatsAppClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &WhatsAppClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	WithRetryPolicy(3, 500*time.Millisecond)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has credentials
func (c *WhatsAppClient) Configured() bool {
	return c.cfg.PhoneNumberID != "" && c.cfg.AccessToken != ""
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// retryClient builds the per-send client. attempts is bumped before every try.
// The last answer is passed through so a final 4xx or 5xx body can be decoded.
func (c *WhatsAppClient) retryClient(attempts *int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = c.httpClient
	rc.RetryMax = c.retryMax
	rc.RetryWaitMin = c.waitMin
	rc.RetryWaitMax = c.waitMax
	rc.Logger = &zapRetryLogger{logger: c.logger.Sugar()}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, _ *http.Request, n int) {
		*attempts = n + 1
		if n > 0 {
			c.logger.Warn("WhatsApp send failed, retrying", zap.Int("attempt", n+1))
		}
	}
	rc.CheckRetry = retryablehttp.DefaultRetryPolicy
	return rc
}

// SendText sends body to the phone number to. Rate limits, server errors and
// transport failures are retried with exponential backoff, honouring
// Retry-After. Other 4xx answers fail immediately.
func (c *WhatsAppClient) SendText(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return ErrWhatsAppNotConfigured
	}
	number := NormalizePhone(to)
	if number == "" {
		return fmt.Errorf("whatsapp: invalid phone number %q", to)
	}

	msg := textMessage{MessagingProduct: "whatsapp", RecipientType: "individual", To: number, Type: "text"}
	msg.Text.Body = body
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.PhoneNumberID + "/messages"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	attempts := 0
	resp, err := c.retryClient(&attempts).Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return fmt.Errorf("whatsapp: %w", err)
	}
	defer resp.Body.Close()

	if err := readAPIError(resp); err != nil {
		return err
	}
	c.logger.Info("WhatsApp message sent", zap.String("to", maskPhone(number)), zap.Int("attempts", attempts))
	return nil
}

func readAPIError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Error *APIError `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Type = envelope.Error.Type
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// zapRetryLogger adapts zap to retryablehttp.LeveledLogger
type zapRetryLogger struct {
	logger *zap.SugaredLogger
}

func (z *zapRetryLogger) Error(msg string, keysAndValues ...any) {
	z.logger.Errorw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Info(msg string, keysAndValues ...any) {
	z.logger.Infow(msg, keysAndValues...)
}

func (z *zapRetryLogger) Debug(msg string, keysAndValues ...any) {
	z.logger.Debugw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Warn(msg string, keysAndValues ...any) {
	z.logger.Warnw(msg, keysAndValues...)
}

// NormalizePhone strips everything but digits. Eight digit local mobile
// numbers get the Bolivian country code.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 8 && (digits[0] == '6' || digits[0] == '7'):
		return "591" + digits
	case len(digits) < 8 || len(digits) > 15:
		return ""
	}
	return digits
}

func maskPhone(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

var _ Messenger = (*WhatsAppClient)(nil)
