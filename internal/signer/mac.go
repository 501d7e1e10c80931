package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"strconv"
	"strings"
)

// MAC algorithms accepted from the account subsystem.
const (
	MACHMACSHA1   = "hmac-sha-1"
	MACHMACSHA256 = "hmac-sha-256"
)

// MACCredentials is the key material of an account access token.
type MACCredentials struct {
	KID       string
	MACKey    string
	Algorithm string
}

// MACRequest identifies the request a MAC authorization is computed for.
type MACRequest struct {
	Method string
	URI    string
	Host   string
	Port   string
	TS     int64
	Nonce  string
}

// MACAuthorizer computes the value of an Authorization header for calls
// authenticated by an account token. The account subsystem owns the real
// algorithm; OAuthMAC is the default used when the host does not inject one.
type MACAuthorizer interface {
	Authorization(creds MACCredentials, req MACRequest) (string, error)
}

// OAuthMAC implements the OAuth 2.0 MAC token scheme.
type OAuthMAC struct{}

// Authorization returns `id="..",ts="..",nonce="..",mac=".."` without the
// leading "MAC " scheme token.
func (OAuthMAC) Authorization(creds MACCredentials, req MACRequest) (string, error) {
	var newHash func() hash.Hash
	switch strings.ToLower(creds.Algorithm) {
	case MACHMACSHA256:
		newHash = sha256.New
	case MACHMACSHA1, "":
		newHash = sha1.New
	default:
		return "", fmt.Errorf("unsupported mac algorithm %q", creds.Algorithm)
	}
	ts := strconv.FormatInt(req.TS, 10)
	normalized := strings.Join([]string{
		ts, req.Nonce, strings.ToUpper(req.Method), req.URI, strings.ToLower(req.Host), req.Port, "",
	}, "\n") + "\n"

	mac := hmac.New(newHash, []byte(creds.MACKey))
	mac.Write([]byte(normalized))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf(`id="%s",ts="%s",nonce="%s",mac="%s"`, creds.KID, ts, req.Nonce, sig), nil
}
