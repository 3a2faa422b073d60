// Package signature authenticates webhook deliveries against the app secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"
	"log/slog"
	"strings"

	"helpline-responder/internal/usecase"
)

// Header names the platform uses for the two supported digests.
const (
	HeaderSHA1   = "X-Hub-Signature"
	HeaderSHA256 = "X-Hub-Signature-256"
)

var (
	ErrMalformedHeader = errors.New("signature: malformed header")
	ErrUnknownMethod   = errors.New("signature: unknown method")
	ErrMismatch        = errors.New("signature: digest mismatch")
)

type Verifier struct {
	secret []byte
	logger *slog.Logger
}

func New(appSecret string, logger *slog.Logger) (*Verifier, error) {
	if strings.TrimSpace(appSecret) == "" {
		return nil, errors.New("signature: app secret must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{secret: []byte(appSecret), logger: logger}, nil
}

// Verify checks header ("<method>=<hexdigest>") against an HMAC of body.
// An absent header is logged and accepted; any other failure is an
// AUTH_ERROR *usecase.Error.
func (v *Verifier) Verify(body []byte, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		v.logger.Warn("webhook signature header missing; request not authenticated")
		return nil
	}

	method, digest, ok := strings.Cut(header, "=")
	if !ok || digest == "" {
		return usecase.NewError(usecase.ErrorAuth, "malformed_signature", ErrMalformedHeader)
	}
	newHash, ok := hashFor(method)
	if !ok {
		return usecase.NewError(usecase.ErrorAuth, "unknown_signature_method", ErrUnknownMethod)
	}
	got, err := hex.DecodeString(digest)
	if err != nil {
		return usecase.NewError(usecase.ErrorAuth, "malformed_signature", ErrMalformedHeader)
	}

	mac := hmac.New(newHash, v.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return usecase.NewError(usecase.ErrorAuth, "signature_mismatch", ErrMismatch)
	}
	return nil
}

// Sign returns the header value for body using method ("sha1" or "sha256").
func (v *Verifier) Sign(method string, body []byte) (string, error) {
	newHash, ok := hashFor(method)
	if !ok {
		return "", ErrUnknownMethod
	}
	mac := hmac.New(newHash, v.secret)
	mac.Write(body)
	return method + "=" + hex.EncodeToString(mac.Sum(nil)), nil
}

func hashFor(method string) (func() hash.Hash, bool) {
	switch strings.ToLower(method) {
	case "sha1":
		return sha1.New, true
	case "sha256":
		return sha256.New, true
	default:
		return nil, false
	}
}
