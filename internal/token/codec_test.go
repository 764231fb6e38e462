package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()

	secret, err := NewRandomSecret()
	require.NoError(t, err)

	codec, err := NewCodec(secret, ttl)
	require.NoError(t, err)
	return codec
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		subject string
		isGuest bool
	}{
		{"logged in user", "alice01", false},
		{"cjk username", "张三", false},
		{"guest subject", "c2a7e9d0-3f41-4a8e-9d6b-1f2e3c4d5e6f", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			codec := testCodec(t, DefaultTTL)
			signed, err := codec.Issue(tc.subject, tc.isGuest)
			require.NoError(t, err)

			ident, err := codec.Verify(signed)
			require.NoError(t, err)
			require.Equal(t, tc.subject, ident.Subject)
			require.Equal(t, tc.isGuest, ident.IsGuest)
			require.WithinDuration(t, ident.IssuedAt.Add(DefaultTTL), ident.ExpiresAt, time.Second)
		})
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, DefaultTTL)
	signed, err := codec.Issue("alice01", false)
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	signed, err := testCodec(t, DefaultTTL).Issue("alice01", false)
	require.NoError(t, err)

	_, err = testCodec(t, DefaultTTL).Verify(signed)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerify_Expiry(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, DefaultTTL)
	issued := time.Now()
	codec.now = func() time.Time { return issued }

	signed, err := codec.Issue("alice01", false)
	require.NoError(t, err)

	// still inside the window
	codec.now = func() time.Time { return issued.Add(DefaultTTL - time.Minute) }
	_, err = codec.Verify(signed)
	require.NoError(t, err)

	// one step past expiry
	codec.now = func() time.Time { return issued.Add(DefaultTTL + time.Second) }
	_, err = codec.Verify(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := testCodec(t, DefaultTTL)

	for _, raw := range []string{"", "not-a-token", "not.a.jwt", "a.b"} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestNewCodec_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(nil, DefaultTTL)
	require.Error(t, err)
}
