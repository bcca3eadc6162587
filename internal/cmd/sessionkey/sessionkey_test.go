package sessionkey

import (
	"bytes"
	"strings"
	"testing"

	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCommand(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestKeygenThenMint(t *testing.T) {
	out, err := run(t, "keygen")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			t.Fatalf("unexpected line %q", line)
		}
		t.Setenv(key, value)
	}

	token, err := run(t, "mint", "--user", "user-9", "--email", "nine@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	cfg, err := auth.LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	claims, err := auth.Verify(strings.TrimSpace(token), cfg)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-9" {
		t.Fatalf("subject = %q", claims.UserID)
	}
}

func TestMintRequiresUser(t *testing.T) {
	if _, err := run(t, "mint"); err == nil {
		t.Fatal("expected missing --user error")
	}
}

func TestMintRequiresPrivateKey(t *testing.T) {
	t.Setenv("CARDCLASH_SESSION_PRIVATE_KEY", "")
	t.Setenv("CARDCLASH_SESSION_PUBLIC_KEY", "AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE")
	_, err := run(t, "mint", "--user", "u")
	if err == nil || !strings.Contains(err.Error(), "PRIVATE_KEY") {
		t.Fatalf("expected private key error, got %v", err)
	}
}
