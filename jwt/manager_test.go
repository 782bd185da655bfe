package jwt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, key string) *Manager {
	t.Helper()
	m, err := NewManager(Config{SigningKey: []byte(key)})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestNewManagerRequiresKey(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrKeyMissing) {
		t.Fatalf("expected ErrKeyMissing, got %v", err)
	}
}

func TestCreateTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, "k1-secret")

	cases := []Claims{
		{},
		{"uid": "u1"},
		{"uid": "u1", "roles": []any{"admin", "editor"}, "tenant": float64(7)},
		{"nested": map[string]any{"a": "b", "n": float64(1.5)}, "flag": true, "nil": nil},
		{"name": "Zoë ✓ 東京"},
		{"uid": int64(9007199254740993), "neg": int64(-9007199254740993)},
	}

	for _, claims := range cases {
		token, err := m.CreateToken(claims)
		if err != nil {
			t.Fatalf("create token: %v", err)
		}
		if !m.Verify(token) {
			t.Fatalf("expected token for %v to verify", claims)
		}
		got, err := m.ExtractToken(token)
		if err != nil {
			t.Fatalf("extract token: %v", err)
		}
		gotJSON, err := json.Marshal(got)
		if err != nil {
			t.Fatalf("marshal got: %v", err)
		}
		wantJSON, err := json.Marshal(claims)
		if err != nil {
			t.Fatalf("marshal want: %v", err)
		}
		if string(gotJSON) != string(wantJSON) {
			t.Fatalf("claims mismatch: got %s want %s", gotJSON, wantJSON)
		}
	}
}

func TestLargeIntegerClaimKeepsValue(t *testing.T) {
	m := newTestManager(t, "k1-secret")
	const uid = int64(9007199254740993)

	token, err := m.CreateToken(Claims{"uid": uid})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	got, err := m.ExtractToken(token)
	if err != nil {
		t.Fatalf("extract token: %v", err)
	}

	if n, ok := got["uid"].(json.Number); !ok || n.String() != "9007199254740993" {
		t.Fatalf("expected json.Number 9007199254740993, got %#v", got["uid"])
	}
	if v, ok := got.Int64("uid"); !ok || v != uid {
		t.Fatalf("Int64(uid) = %d, %v; want %d", v, ok, uid)
	}
	neighbour, err := m.ExtractToken(mustCreate(t, m, Claims{"uid": uid - 1}))
	if err != nil {
		t.Fatalf("extract neighbour token: %v", err)
	}
	if neighbour["uid"] == got["uid"] {
		t.Fatal("adjacent large integers decoded to the same claim")
	}
}

func mustCreate(t *testing.T, m *Manager, claims Claims) string {
	t.Helper()
	token, err := m.CreateToken(claims)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return token
}

func TestCreateTokenWireFormat(t *testing.T) {
	m := newTestManager(t, "secret")

	token, err := m.CreateToken(Claims{"uid": "u1"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("token must be base64url without padding: %s", token)
	}

	header, err := DecodeSegment(parts[0])
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if string(header) != `{"alg":"HS512","typ":"JWT"}` {
		t.Fatalf("unexpected header %s", header)
	}
	payload, err := DecodeSegment(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if string(payload) != `{"uid":"u1"}` {
		t.Fatalf("unexpected payload %s", payload)
	}
	sig, err := DecodeSegment(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if len(sig) != 64 {
		t.Fatalf("expected 64-byte HMAC-SHA512, got %d", len(sig))
	}
}

func TestCreateTokenDeterministic(t *testing.T) {
	m := newTestManager(t, "secret")
	claims := Claims{"b": "2", "a": "1", "exp": float64(4102444800)}

	first, err := m.CreateToken(claims)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	second, err := m.CreateToken(claims.Clone())
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical tokens, got %s and %s", first, second)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	m1 := newTestManager(t, "key-one")
	m2 := newTestManager(t, "key-two")

	token, err := m1.CreateToken(Claims{"uid": "u1"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if m2.Verify(token) {
		t.Fatal("expected token signed with another key to be rejected")
	}
	if _, err := m2.ExtractToken(token); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyRejectsSingleCharacterTamper(t *testing.T) {
	m := newTestManager(t, "tamper-key")
	token, err := m.CreateToken(Claims{"uid": "u1", "role": "member"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]
		if m.Verify(tampered) {
			t.Fatalf("tampered token at offset %d still verified", i)
		}
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	m := newTestManager(t, "secret")
	valid, err := m.CreateToken(Claims{"uid": "u1"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	parts := strings.Split(valid, ".")

	cases := []string{
		"",
		"abc",
		"a.b",
		parts[0] + "." + parts[1],
		valid + ".extra",
		parts[0] + ".!!!." + parts[2],
		"..",
	}
	for _, tc := range cases {
		if m.Verify(tc) {
			t.Fatalf("expected %q to be rejected", tc)
		}
		if _, err := m.ExtractToken(tc); err == nil {
			t.Fatalf("expected error for %q", tc)
		}
	}
}

func TestVerifyRejectsForeignAlgorithm(t *testing.T) {
	m := newTestManager(t, "secret")
	header := EncodeSegment([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := EncodeSegment([]byte(`{"uid":"u1"}`))
	token := header + "." + payload + "." + EncodeSegment([]byte("sig"))

	if m.Verify(token) {
		t.Fatal("expected non-HS512 token to be rejected")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m, err := NewManager(Config{SigningKey: []byte("secret"), Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tests := []struct {
		name    string
		claims  Claims
		wantErr error
	}{
		{name: "no exp never expires", claims: Claims{"uid": "u1"}},
		{name: "zero exp never expires", claims: Claims{"exp": 0}},
		{name: "future exp", claims: Claims{"exp": now.Add(time.Hour).Unix()}},
		{name: "exp equal to now", claims: Claims{"exp": now.Unix()}},
		{name: "past exp", claims: Claims{"exp": now.Add(-time.Second).Unix()}, wantErr: ErrTokenExpired},
		{name: "exp wrong type", claims: Claims{"exp": "tomorrow"}, wantErr: ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := m.CreateToken(tt.claims)
			if err != nil {
				t.Fatalf("create token: %v", err)
			}
			_, err = m.ExtractToken(token)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected valid token, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExtractTokenAcceptsPaddedSegments(t *testing.T) {
	m := newTestManager(t, "secret")
	token, err := m.CreateToken(Claims{"uid": "u"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if !m.Verify(token) {
		t.Fatal("expected token to verify")
	}

	// The signing input is the raw text, so re-padding the payload changes
	// the signature input and must not verify.
	parts := strings.Split(token, ".")
	if len(parts[1])%4 != 0 {
		padded := parts[0] + "." + parts[1] + strings.Repeat("=", 4-len(parts[1])%4) + "." + parts[2]
		if m.Verify(padded) {
			t.Fatal("expected re-padded payload to change the signing input")
		}
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	for n := 0; n <= 67; n++ {
		in := make([]byte, n)
		for i := range in {
			in[i] = byte(i*37 + n)
		}
		enc := EncodeSegment(in)
		if strings.ContainsAny(enc, "+/=") {
			t.Fatalf("encoded segment for %d bytes is not base64url: %s", n, enc)
		}
		out, err := DecodeSegment(enc)
		if err != nil {
			t.Fatalf("decode %d bytes: %v", n, err)
		}
		if string(out) != string(in) {
			t.Fatalf("round trip mismatch for %d bytes", n)
		}
	}
}

func TestDecodeSegmentRestoresPadding(t *testing.T) {
	cases := map[string]string{
		"Zg":   "f",
		"Zg==": "f",
		"Zm8":  "fo",
		"Zm8=": "fo",
		"Zm9v": "foo",
		"-_-_": "\xfb\xff\xbf",
	}
	for in, want := range cases {
		got, err := DecodeSegment(in)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if string(got) != want {
			t.Fatalf("decode %q: got %q want %q", in, got, want)
		}
	}

	if _, err := DecodeSegment("a"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for impossible length, got %v", err)
	}
}

func TestClaimsAccessors(t *testing.T) {
	var decoded Claims
	if err := json.Unmarshal([]byte(`{"uid":"u1","exp":1700000000,"n":"x"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if uid, ok := decoded.String("uid"); !ok || uid != "u1" {
		t.Fatalf("unexpected uid %q %v", uid, ok)
	}
	if exp, ok := decoded.Int64(ClaimExpiresAt); !ok || exp != 1700000000 {
		t.Fatalf("unexpected exp %d %v", exp, ok)
	}
	if _, ok := decoded.Int64("n"); ok {
		t.Fatal("expected non-numeric claim to report !ok")
	}
	if _, ok := decoded.Get("missing"); ok {
		t.Fatal("expected missing claim to be absent")
	}

	clone := decoded.Clone()
	clone.Set("uid", "u2")
	if uid, _ := decoded.String("uid"); uid != "u1" {
		t.Fatal("clone must not alias the original")
	}

	var nilClaims Claims
	if got := nilClaims.Clone(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil clone, got %#v", got)
	}
}
