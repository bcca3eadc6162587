package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDemoFixtureIsValid(t *testing.T) {
	t.Parallel()

	fixture, err := DemoFixture()
	if err != nil {
		t.Fatalf("demo fixture: %v", err)
	}
	if len(fixture.Events) != 4 {
		t.Fatalf("events = %d, want 4", len(fixture.Events))
	}
	if len(fixture.Catalog) != 4 {
		t.Fatalf("catalog = %d, want 4", len(fixture.Catalog))
	}
	if fixture.Stats == nil || fixture.Stats.Members != 12840 {
		t.Fatalf("stats = %+v", fixture.Stats)
	}
	if got := fixture.Events[0].Requirements["min_level"]; got != "10" {
		t.Fatalf("e1 min_level = %q", got)
	}
}

func TestDecodeFixtureRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "empty",
			body: "",
			want: "fixture is empty",
		},
		{
			name: "unknown key",
			body: "events: []\nplayers: []\n",
			want: "players",
		},
		{
			name: "duplicate event ids",
			body: `events:
  - {id: e1, title: A, status: active, start_date: 2026-03-01T00:00:00Z, end_date: 2026-03-02T00:00:00Z}
  - {id: e1, title: B, status: active, start_date: 2026-03-01T00:00:00Z, end_date: 2026-03-02T00:00:00Z}
`,
			want: "unique",
		},
		{
			name: "over capacity",
			body: `events:
  - {id: e1, title: A, status: active, start_date: 2026-03-01T00:00:00Z, end_date: 2026-03-02T00:00:00Z, max_participants: 2, current_participants: 3}
`,
			want: "ltefield",
		},
		{
			name: "ends before start",
			body: `events:
  - {id: e1, title: A, status: active, start_date: 2026-03-02T00:00:00Z, end_date: 2026-03-01T00:00:00Z}
`,
			want: "gtfield",
		},
		{
			name: "unknown status",
			body: `events:
  - {id: e1, title: A, status: paused, start_date: 2026-03-01T00:00:00Z, end_date: 2026-03-02T00:00:00Z}
`,
			want: "oneof",
		},
		{
			name: "published without time",
			body: "news:\n  - {id: n1, title: A, published: true}\n",
			want: "required_if",
		},
		{
			name: "negative price",
			body: "catalog:\n  - {id: x, name: X, price_cents: -1}\n",
			want: "gte",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeFixture(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFixtureFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fixture.yaml")
	body := "contributors:\n  - {id: c-9, name: Ana, contributions: 3}\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	fixture, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	if len(fixture.Contributors) != 1 || fixture.Contributors[0].Name != "Ana" {
		t.Fatalf("contributors = %+v", fixture.Contributors)
	}
	if len(fixture.Events) != 0 {
		t.Fatalf("events = %+v", fixture.Events)
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}
