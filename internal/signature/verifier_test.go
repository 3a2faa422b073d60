package signature

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"helpline-responder/internal/usecase"
)

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := New("app-secret", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	return v
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New("  ", nil)
	require.Error(t, err)
}

func TestVerify_ValidSignature(t *testing.T) {
	v := newVerifier(t)
	body := []byte(`{"object":"page","entry":[]}`)
	for _, method := range []string{"sha1", "sha256"} {
		header, err := v.Sign(method, body)
		require.NoError(t, err)
		require.NoError(t, v.Verify(body, header), method)
	}
}

func TestVerify_EverySingleByteMutationFails(t *testing.T) {
	v := newVerifier(t)
	body := []byte(`{"object":"page"}`)
	header, err := v.Sign("sha1", body)
	require.NoError(t, err)

	for i := range body {
		mutated := bytes.Clone(body)
		mutated[i] ^= 0x01
		err := v.Verify(mutated, header)
		require.Error(t, err, "byte %d", i)
		require.Equal(t, usecase.ErrorAuth, usecase.CodeOf(err))
		require.True(t, errors.Is(err, ErrMismatch))
	}
}

func TestVerify_MissingHeaderIsLoggedAndAccepted(t *testing.T) {
	var buf bytes.Buffer
	v, err := New("app-secret", slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)

	require.NoError(t, v.Verify([]byte("anything"), ""))
	require.Contains(t, buf.String(), "signature header missing")
}

func TestVerify_MalformedHeaders(t *testing.T) {
	v := newVerifier(t)
	cases := map[string]error{
		"sha1":                           ErrMalformedHeader,
		"sha1=":                          ErrMalformedHeader,
		"sha1=zz-not-hex":                ErrMalformedHeader,
		"md5=" + strings.Repeat("a", 32): ErrUnknownMethod,
	}
	for header, want := range cases {
		err := v.Verify([]byte("body"), header)
		require.Error(t, err, header)
		require.True(t, errors.Is(err, want), header)
		require.Equal(t, usecase.ErrorAuth, usecase.CodeOf(err))
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte("payload")
	other, err := New("other-secret", nil)
	require.NoError(t, err)
	header, err := other.Sign("sha256", body)
	require.NoError(t, err)

	err = newVerifier(t).Verify(body, header)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMismatch))
}
