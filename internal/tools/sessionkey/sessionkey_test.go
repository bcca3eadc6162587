package sessionkey

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
)

func TestKeygenRequiresOutput(t *testing.T) {
	if err := Keygen(nil, bytes.NewReader([]byte{1})); err == nil {
		t.Fatal("expected error when output is nil")
	}
}

func TestKeygenWritesKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{1}, 64))
	if err := Keygen(buf, reader); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	private := strings.TrimPrefix(lines[0], "export CARDCLASH_SESSION_PRIVATE_KEY=")
	public := strings.TrimPrefix(lines[1], "export CARDCLASH_SESSION_PUBLIC_KEY=")
	if private == lines[0] || public == lines[1] {
		t.Fatalf("unexpected output format: %q", buf.String())
	}

	privateBytes, err := base64.RawStdEncoding.DecodeString(private)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	publicBytes, err := base64.RawStdEncoding.DecodeString(public)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(privateBytes) != ed25519.PrivateKeySize {
		t.Fatalf("expected private key length %d, got %d", ed25519.PrivateKeySize, len(privateBytes))
	}
	if len(publicBytes) != ed25519.PublicKeySize {
		t.Fatalf("expected public key length %d, got %d", ed25519.PublicKeySize, len(publicBytes))
	}
}

func TestMintWritesVerifiableToken(t *testing.T) {
	public, private, err := ed25519.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	cfg := auth.Config{
		Issuer:     "cardclash",
		Audience:   "cardclash-datastore",
		PublicKey:  public,
		PrivateKey: private,
		Now:        func() time.Time { return now },
	}

	buf := &bytes.Buffer{}
	if err := Mint(buf, cfg, "user-1", "ada@example.com", time.Hour); err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := auth.Verify(strings.TrimSpace(buf.String()), cfg)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestMintWithoutPrivateKeyFails(t *testing.T) {
	if err := Mint(&bytes.Buffer{}, auth.Config{}, "user-1", "", time.Hour); err == nil {
		t.Fatal("expected error without private key")
	}
}
