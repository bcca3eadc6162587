package pagination

import "testing"

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 10, Max: 50}
	cases := map[int32]int{0: 10, -3: 10, 7: 7, 50: 50, 51: 50}
	for in, want := range cases {
		if got := ClampPageSize(in, cfg); got != want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", in, got, want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestParseOrderByDefaultsAndDirections(t *testing.T) {
	cfg := OrderByConfig{Default: "start_date asc", Allowed: []string{"start_date", "title"}}

	parsed, err := ParseOrderBy("", cfg)
	if err != nil {
		t.Fatalf("parse default: %v", err)
	}
	if len(parsed.Fields) != 1 || parsed.Fields[0].Path != "start_date" || parsed.Fields[0].Desc {
		t.Fatalf("unexpected default ordering: %+v", parsed.Fields)
	}

	parsed, err = ParseOrderBy("title desc, start_date", cfg)
	if err != nil {
		t.Fatalf("parse explicit: %v", err)
	}
	if len(parsed.Fields) != 2 || !parsed.Fields[0].Desc || parsed.Fields[1].Desc {
		t.Fatalf("unexpected ordering: %+v", parsed.Fields)
	}
}

func TestParseOrderByRejectsUnknownField(t *testing.T) {
	cfg := OrderByConfig{Allowed: []string{"start_date"}}
	if _, err := ParseOrderBy("secret desc", cfg); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := ParseOrderBy("start_date; DROP", cfg); err == nil {
		t.Fatal("expected syntax error")
	}
}
