// Package cookie signs and verifies the session cookie. The value is
// base64url JSON signed with HMAC-SHA256; the signature is appended
// after a dot so the cookie stays a single token.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNoSecret         = errors.New("cookie secret is not set")
	ErrInvalidSignature = errors.New("invalid cookie signature")
	ErrMalformedPayload = errors.New("malformed cookie payload")
)

// Payload is what the session cookie carries. Everything else about
// the session lives server-side.
type Payload struct {
	SessionID string       `json:"sessionId"`
	UserID    snowflake.ID `json:"userId"`
}

// Codec encodes and decodes signed session cookies.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode returns `<base64url(json)>.<base64url(hmac)>`.
func (c *Codec) Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	return value + "." + c.sign(value), nil
}

// Decode verifies the signature before it parses anything; a bad
// signature never reaches the JSON decoder.
func (c *Codec) Decode(token string) (Payload, error) {
	value, sig, ok := strings.Cut(token, ".")
	if !ok {
		return Payload{}, ErrInvalidSignature
	}
	if !hmac.Equal([]byte(c.sign(value)), []byte(sig)) {
		return Payload{}, ErrInvalidSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Payload{}, ErrMalformedPayload
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, ErrMalformedPayload
	}
	if p.SessionID == "" || p.UserID == 0 {
		return Payload{}, ErrMalformedPayload
	}
	return p, nil
}

func (c *Codec) sign(value string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
