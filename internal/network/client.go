// Package network talks to the compliance REST API. Every request is signed
// by internal/signer; failures come back as *Error values carrying a Kind.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"playgate/internal/account"
	"playgate/internal/models"
	"playgate/internal/platform/metrics"
	"playgate/internal/signer"
	"playgate/pkg/requestcontext"
)

// DefaultHost is the regional API host.
const DefaultHost = "https://tapsdk.tapapis.cn"

const (
	headerClientID       = "X-LC-Id"
	headerAcceptLanguage = "Accept-Language"
	headerAuthorization  = "Authorization"

	macPort = "443"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Endpoint names, used for spans, metrics and errors.
const (
	EndpointGlobalConfig       = "global_config"
	EndpointVerification       = "verification"
	EndpointVerificationByTok  = "verification_by_token"
	EndpointUpgradeToken       = "upgrade_token"
	EndpointVerificationManual = "verification_manual"
	EndpointUserConfig         = "user_config"
	EndpointHeartbeat          = "heartbeat"
	EndpointPayable            = "payable"
	EndpointPaymentSubmit      = "payment_submit"
)

// Client is the signed compliance API client. It is safe for concurrent use.
type Client struct {
	clientID   string
	signer     *signer.Signer
	httpClient *http.Client
	mac        signer.MACAuthorizer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer

	mu       sync.RWMutex
	host     string
	testMode bool
	token    func() string
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the transport. The default has a 10s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMACAuthorizer injects the account subsystem's MAC signer.
func WithMACAuthorizer(a signer.MACAuthorizer) Option {
	return func(c *Client) {
		c.mac = a
	}
}

// WithHost sets the API host at construction time.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = strings.TrimRight(host, "/")
	}
}

// New creates a Client for clientID.
func New(clientID string, s *signer.Signer, opts ...Option) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("client id is required")
	}
	if s == nil {
		return nil, errors.New("signer is required")
	}
	c := &Client{
		clientID:   clientID,
		signer:     s,
		httpClient: &http.Client{Timeout: defaultTimeout},
		mac:        signer.OAuthMAC{},
		logger:     slog.Default(),
		tracer:     otel.Tracer("playgate/network"),
		host:       DefaultHost,
		token:      func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetHost changes the API host.
func (c *Client) SetHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = strings.TrimRight(host, "/")
}

// Host returns the API host.
func (c *Client) Host() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

// SetTestMode toggles the test_mode query flag on policy endpoints.
func (c *Client) SetTestMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.testMode = enabled
}

func (c *Client) TestMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.testMode
}

// SetTokenSource sets where the current compliance token is read from when
// headers are signed.
func (c *Client) SetTokenSource(fn func() string) {
	if fn == nil {
		fn = func() string { return "" }
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = fn
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	fn := c.token
	c.mu.RUnlock()
	return fn()
}

// -----------------------------------------------------------------------------
// Endpoints
// -----------------------------------------------------------------------------

// FetchConfig returns the game-wide configuration.
func (c *Client) FetchConfig(ctx context.Context, userID string) (*models.GlobalConfig, error) {
	path := "real-name/v1/get-global-config?client_id=" + c.clientID + "&user_identifier=" + url.QueryEscape(userID)
	var out models.GlobalConfig
	if err := c.do(ctx, call{endpoint: EndpointGlobalConfig, method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchVerification resolves verification by user id alone.
func (c *Client) FetchVerification(ctx context.Context, userID string) (*models.VerificationResult, error) {
	path := "real-name/v1/anti-addiction-token?client_id=" + c.clientID + "&user_identifier=" + url.QueryEscape(userID)
	var out models.VerificationResult
	if err := c.do(ctx, call{endpoint: EndpointVerification, method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchVerificationByToken exchanges an account access token for a
// compliance token. ts overrides the signed timestamp; zero means now.
func (c *Client) FetchVerificationByToken(ctx context.Context, userID string, token *account.AccessToken, ts int64) (*models.VerificationResult, error) {
	if token == nil {
		return nil, errors.New("access token is required")
	}
	path := "real-name/v1/anti-addiction-token-taptap?client_id=" + c.clientID + "&user_identifier=" + url.QueryEscape(userID)

	macTS := ts
	if macTS == 0 {
		macTS = requestcontext.Now(ctx).Unix()
	}
	target, err := url.Parse(c.Host() + "/" + path)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: EndpointVerificationByTok, Message: "invalid host", Err: err}
	}
	auth, err := c.mac.Authorization(token.MACCredentials(), signer.MACRequest{
		Method: http.MethodGet,
		URI:    target.RequestURI(),
		Host:   target.Hostname(),
		Port:   macPort,
		TS:     macTS,
		Nonce:  strconv.Itoa(rand.IntN(1 << 30)),
	})
	if err != nil {
		return nil, fmt.Errorf("mac authorization: %w", err)
	}

	var out models.VerificationResult
	err = c.do(ctx, call{
		endpoint: EndpointVerificationByTok,
		method:   http.MethodGet,
		path:     path,
		ts:       ts,
		extra:    map[string]string{headerAuthorization: "MAC " + auth},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type upgradeBody struct {
	TokenV1        string `json:"anti_addiction_token_v1"`
	UserIdentifier string `json:"user_identifier"`
}

// UpgradeToken trades a legacy v1 compliance token for a v2 verification.
func (c *Client) UpgradeToken(ctx context.Context, userID, oldToken string) (*models.VerificationResult, error) {
	path := "real-name/v1/anti-addiction-token-upgrade?client_id=" + c.clientID
	var out models.VerificationResult
	err := c.do(ctx, call{
		endpoint: EndpointUpgradeToken,
		method:   http.MethodPost,
		path:     path,
		body:     upgradeBody{TokenV1: oldToken, UserIdentifier: userID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type manualBody struct {
	Name           string `json:"name"`
	IDCard         string `json:"idcard"`
	UserIdentifier string `json:"user_identifier"`
}

// FetchVerificationManual submits a real name and ID number.
func (c *Client) FetchVerificationManual(ctx context.Context, userID, name, idCard string) (*models.VerificationResult, error) {
	path := "real-name/v1/anti-addiction-token-manual?client_id=" + c.clientID
	var out models.VerificationResult
	err := c.do(ctx, call{
		endpoint: EndpointVerificationManual,
		method:   http.MethodPost,
		path:     path,
		body:     manualBody{Name: name, IDCard: idCard, UserIdentifier: userID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchUserConfig returns the user's policy. ts overrides the signed
// timestamp; zero means now.
func (c *Client) FetchUserConfig(ctx context.Context, userID string, ts int64) (*models.UserPolicyConfig, error) {
	path := "anti-addiction/v1/get-config-by-token?platform=pc&client_id=" + c.clientID + c.testModeParam() +
		"&user_identifier=" + url.QueryEscape(userID)
	var out models.UserPolicyConfig
	if err := c.do(ctx, call{endpoint: EndpointUserConfig, method: http.MethodGet, path: path, ts: ts}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type heartbeatBody struct {
	SessionID      string `json:"session_id"`
	UserIdentifier string `json:"user_identifier"`
}

// CheckPlayable posts a heartbeat for sessionID and returns the remaining
// play time.
func (c *Client) CheckPlayable(ctx context.Context, userID, sessionID string) (*models.PlayableResult, error) {
	path := "anti-addiction/v1/heartbeat?client_id=" + c.clientID + c.testModeParam()
	var out models.PlayableResult
	err := c.do(ctx, call{
		endpoint: EndpointHeartbeat,
		method:   http.MethodPost,
		path:     path,
		body:     heartbeatBody{SessionID: sessionID, UserIdentifier: userID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckPayable asks whether a payment of amount (in cents) is allowed.
func (c *Client) CheckPayable(ctx context.Context, userID string, amount int64) (*models.PayableResult, error) {
	path := "anti-addiction/v1/payable?client_id=" + c.clientID + "&amount=" + strconv.FormatInt(amount, 10) +
		c.testModeParam() + "&user_identifier=" + url.QueryEscape(userID)
	var out models.PayableResult
	if err := c.do(ctx, call{endpoint: EndpointPayable, method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type paymentBody struct {
	Amount         int64  `json:"amount"`
	UserIdentifier string `json:"user_identifier"`
}

// SubmitPayment records a completed payment of amount.
func (c *Client) SubmitPayment(ctx context.Context, userID string, amount int64) error {
	path := "anti-addiction/v1/payment-submit?client_id=" + c.clientID + c.testModeParam()
	return c.do(ctx, call{
		endpoint: EndpointPaymentSubmit,
		method:   http.MethodPost,
		path:     path,
		body:     paymentBody{Amount: amount, UserIdentifier: userID},
	}, nil)
}

func (c *Client) testModeParam() string {
	if c.TestMode() {
		return "&test_mode=1"
	}
	return ""
}

// -----------------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------------

type call struct {
	endpoint string
	method   string
	// path is relative to the host, without a leading slash.
	path  string
	body  any
	ts    int64
	extra map[string]string
}

type errorEnvelope struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"msg"`
	Now     int64  `json:"now"`
}

func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "compliance."+cl.endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("compliance.endpoint", cl.endpoint)),
	)
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		span.SetAttributes(attribute.String("compliance.request_id", requestID))
	}
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = string(KindOf(err))
			if result == "" {
				result = "error"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		c.metrics.ObserveRequest(cl.endpoint, result, time.Since(start))
		span.End()
	}()

	var body []byte
	if cl.body != nil {
		body, err = encodeBody(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", cl.endpoint, err)
		}
	}

	headers := c.signer.Headers(ctx, signer.Request{
		Method:          cl.method,
		PathAndQuery:    "/" + cl.path,
		Body:            body,
		Timestamp:       cl.ts,
		ComplianceToken: c.currentToken(),
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.Host()+"/"+cl.path, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Endpoint: cl.endpoint, Message: "build request", Err: err}
	}
	// Direct assignment keeps the vendor header casing intact.
	for k, v := range headers {
		req.Header[k] = []string{v}
	}
	req.Header[headerClientID] = []string{c.clientID}
	req.Header[headerAcceptLanguage] = []string{"zh-CN"}
	for k, v := range cl.extra {
		req.Header[k] = []string{v}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Endpoint: cl.endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindTransport, Endpoint: cl.endpoint, Code: resp.StatusCode, Message: "read body", Err: err}
	}

	c.logger.DebugContext(ctx, "compliance call",
		"endpoint", cl.endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(cl.endpoint, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &Error{Kind: KindMalformed, Endpoint: cl.endpoint, Code: resp.StatusCode, Err: err}
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return &Error{Kind: KindMalformed, Endpoint: cl.endpoint, Code: resp.StatusCode, Message: "missing result"}
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &Error{Kind: KindMalformed, Endpoint: cl.endpoint, Code: resp.StatusCode, Err: err}
	}
	return nil
}

func parseError(endpoint string, status int, raw []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Kind: classify(status, ""), Endpoint: endpoint, Code: status, Message: http.StatusText(status)}
	}
	return &Error{
		Kind:       classify(status, env.Error),
		Endpoint:   endpoint,
		Code:       status,
		ServerCode: env.Code,
		Tag:        env.Error,
		Message:    env.Message,
		Now:        env.Now,
	}
}

// encodeBody serializes v exactly as it is signed and sent: struct field
// order, no HTML escaping, no trailing newline.
func encodeBody(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
