package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/audit"
	"github.com/MrEthical07/bossanova/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr_FR.csv"), []byte("world|monde\n"), 0o600))

	t.Setenv("JWT_SECRET", "cli-test-key")
	t.Setenv("BOSSANOVA_JWT_SECRET", "")
	t.Setenv("LOCALE", "en_GB")
	t.Setenv("LOCALE_DIR", dir)
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("TRANSLATE_CACHE_DISABLED", "")
	return dir
}

func TestTokenCreateVerify(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "token", "create", "--claim", "uid=42", "--claim", "role=admin", "--claim", `tags=["a","b"]`, "--ttl", "1h")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.Len(t, strings.Split(token, "."), 3)

	out, err = runCmd(t, "", "token", "verify", token)
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &claims))
	assert.Equal(t, float64(42), claims["uid"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, []any{"a", "b"}, claims["tags"])
	assert.Contains(t, claims, jwt.ClaimExpiresAt)

	out, err = runCmd(t, token+"\n", "token", "verify", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"role": "admin"`)
}

func TestTokenVerifyRejects(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "token", "create", "--claim", "uid=1")
	require.NoError(t, err)
	token := strings.TrimSpace(out)

	_, err = runCmd(t, "", "token", "verify", "--key", "another-key", token)
	require.ErrorIs(t, err, jwt.ErrSignatureInvalid)

	_, err = runCmd(t, "", "token", "verify", "garbage")
	require.ErrorIs(t, err, jwt.ErrTokenMalformed)

	_, err = runCmd(t, "", "token", "verify")
	require.Error(t, err)
}

func TestTokenRequiresKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := runCmd(t, "", "token", "create", "--claim", "uid=1")
	require.ErrorIs(t, err, bossanova.ErrSigningKeyMissing)

	_, err = runCmd(t, "", "token", "create", "--claim", "broken")
	require.ErrorIs(t, err, bossanova.ErrSigningKeyMissing)
}

func TestTranslateCommand(t *testing.T) {
	dir := setupEnv(t)

	out, err := runCmd(t, "Hello ^^[world]^^!", "translate", "--locale", "fr_FR")
	require.NoError(t, err)
	assert.Equal(t, "Hello monde!", out)

	out, err = runCmd(t, "Hello ^^[world]^^!", "translate")
	require.NoError(t, err)
	assert.Equal(t, "Hello world!", out, "default locale has no dictionary")

	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte("<b>^^[world]^^</b>"), 0o600))
	out, err = runCmd(t, "", "translate", "--locale", "fr_FR", "--clear-cache", page)
	require.NoError(t, err)
	assert.Equal(t, "<b>monde</b>", out)

	_, err = runCmd(t, "", "translate", filepath.Join(dir, "absent.html"))
	require.Error(t, err)
}

func TestParseClaims(t *testing.T) {
	claims, err := parseClaims([]string{"uid=42", "name=alice", "admin=true", "empty=", "obj={\"a\":1}", "eq=a=b", "sp=1 2"})
	require.NoError(t, err)

	assert.Equal(t, json.Number("42"), claims["uid"])
	assert.Equal(t, "alice", claims["name"])
	assert.Equal(t, true, claims["admin"])
	assert.Equal(t, "", claims["empty"])
	assert.Equal(t, map[string]any{"a": json.Number("1")}, claims["obj"])
	assert.Equal(t, "a=b", claims["eq"])
	assert.Equal(t, "1 2", claims["sp"])

	for _, bad := range []string{"novalue", "=x", " =x"} {
		_, err := parseClaims([]string{bad})
		assert.Error(t, err, "claim %q", bad)
	}
}

func TestBenchCommand(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "bench", "--tokens", "8", "--phrases", "4", "--ops", "40", "--concurrency", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "verify: ops=40 failures=0")
	assert.Contains(t, out, "translate: ops=40 failures=0")

	_, err = runCmd(t, "", "bench", "--ops", "0")
	require.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "", "--log-level", "loud", "token", "create")
	require.Error(t, err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	setupEnv(t)
	t.Setenv("AUDIT_ENABLED", "true")

	a := &app{logLevel: "error"}
	require.NoError(t, a.init())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	require.NoError(t, a.serve(ctx, "127.0.0.1:0"))
}

func TestAuditDispatcherWritesFile(t *testing.T) {
	setupEnv(t)
	file := filepath.Join(t.TempDir(), "audit.log")
	t.Setenv("AUDIT_ENABLED", "true")
	t.Setenv("AUDIT_FILE", file)

	a := &app{logLevel: "error"}
	require.NoError(t, a.init())

	d := a.auditDispatcher()
	require.NotNil(t, d)
	d.Emit(context.Background(), audit.Event{EventType: audit.EventSessionSaved, Success: true})
	d.Close()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"session_saved"`)

	t.Setenv("AUDIT_ENABLED", "false")
	require.NoError(t, a.init())
	assert.Nil(t, a.auditDispatcher())
}
