// Package signer builds the authenticated header set carried by every
// compliance request.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"playgate/pkg/requestcontext"
)

// Header names. Keys are written into http.Header verbatim so their casing
// on the wire matches what the server expects.
const (
	HeaderProduct       = "X-Tap-PN"
	HeaderLang          = "X-Tap-Lang"
	HeaderDeviceID      = "X-Tap-Device-Id"
	HeaderPlatform      = "X-Tap-Platform"
	HeaderModule        = "X-Tap-SDK-Module"
	HeaderModuleVersion = "X-Tap-SDK-Module-Version"
	HeaderArtifact      = "X-Tap-SDK-Artifact"
	HeaderUserAgent     = "User-Agent"
	HeaderNonce         = "X-Tap-Nonce"
	HeaderTimestamp     = "X-Tap-Ts"
	HeaderToken         = "X-Tap-Anti-Addiction-Token"
	HeaderGameUserID    = "X-Tap-SDK-Game-User-Id"
	HeaderSign          = "X-Tap-Sign"

	signedPrefix = "x-tap-"
)

const (
	productName = "TapSDK"
	platformPC  = "PC"
	moduleName  = "TapCompliance"

	defaultLang     = "zh_CN"
	defaultArtifact = "Go"
	defaultVersion  = "1.0.0"
)

// Config holds the per-client constants of the header set.
type Config struct {
	ClientToken string
	DeviceID    string
	Lang        string
	SDKVersion  string
	Artifact    string
	UserAgent   string
}

// Request describes one outbound call as far as signing is concerned.
type Request struct {
	Method string
	// PathAndQuery is the request path starting with "/" including the
	// encoded query string.
	PathAndQuery string
	// Body is the exact serialized body that will be sent, nil for none.
	Body []byte
	// Timestamp overrides the unix-second timestamp. Zero means now.
	Timestamp int64
	// ComplianceToken is included when non-empty.
	ComplianceToken string
}

// Signer produces signed header maps.
type Signer struct {
	cfg   Config
	nonce func() string
}

// Option configures a Signer.
type Option func(*Signer)

// WithNonce overrides the nonce source, mainly for tests.
func WithNonce(fn func() string) Option {
	return func(s *Signer) {
		s.nonce = fn
	}
}

// New builds a Signer. The client token is the HMAC key and is required.
func New(cfg Config, opts ...Option) (*Signer, error) {
	if cfg.ClientToken == "" {
		return nil, fmt.Errorf("client token is required")
	}
	if cfg.Lang == "" {
		cfg.Lang = defaultLang
	}
	if cfg.Artifact == "" {
		cfg.Artifact = defaultArtifact
	}
	if cfg.SDKVersion == "" {
		cfg.SDKVersion = defaultVersion
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("TapSDK-%s/%s", cfg.Artifact, cfg.SDKVersion)
	}
	s := &Signer{
		cfg:   cfg,
		nonce: func() string { return strconv.Itoa(rand.IntN(1 << 30)) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Headers returns the complete header set for req, including X-Tap-Sign.
func (s *Signer) Headers(ctx context.Context, req Request) map[string]string {
	ts := req.Timestamp
	if ts == 0 {
		ts = requestcontext.Now(ctx).Unix()
	}
	headers := map[string]string{
		HeaderProduct:       productName,
		HeaderLang:          s.cfg.Lang,
		HeaderDeviceID:      s.cfg.DeviceID,
		HeaderPlatform:      platformPC,
		HeaderModule:        moduleName,
		HeaderModuleVersion: s.cfg.SDKVersion,
		HeaderArtifact:      s.cfg.Artifact,
		HeaderUserAgent:     s.cfg.UserAgent,
		HeaderNonce:         s.nonce(),
		HeaderTimestamp:     strconv.FormatInt(ts, 10),
	}
	if req.ComplianceToken != "" {
		headers[HeaderToken] = req.ComplianceToken
	}
	if gameUserID := requestcontext.GameUserID(ctx); gameUserID != "" {
		headers[HeaderGameUserID] = gameUserID
	}
	headers[HeaderSign] = s.Sign(Canonical(req.Method, req.PathAndQuery, headers, req.Body))
	return headers
}

// Sign returns base64(HMAC-SHA256(clientToken, canonical)).
func (s *Signer) Sign(canonical string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.ClientToken))
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Canonical renders the string that is signed:
//
//	METHOD\nPATH?QUERY\nx-tap-a:1\nx-tap-b:2\nBODY\n
//
// The body line is empty when there is no body. Only vendor-prefixed
// headers take part, ordered by lowercase key.
func Canonical(method, pathAndQuery string, headers map[string]string, body []byte) string {
	signed := make(map[string]string, len(headers))
	keys := make([]string, 0, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, signedPrefix) && lk != strings.ToLower(HeaderSign) {
			signed[lk] = v
			keys = append(keys, lk)
		}
	}
	// Sort on the key alone; "x-tap-sdk-module" must precede
	// "x-tap-sdk-module-version".
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + ":" + signed[k]
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte('\n')
	b.WriteString(pathAndQuery)
	b.WriteByte('\n')
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteByte('\n')
	if len(body) > 0 {
		b.Write(body)
	}
	b.WriteByte('\n')
	return b.String()
}
