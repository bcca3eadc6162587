package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if got := GetCatalog("missing-locale"); got != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if got := GetCatalog(""); got != base {
		t.Fatal("expected blank locale to resolve to en-US catalog")
	}
}

func TestGetCatalogChinese(t *testing.T) {
	cat := GetCatalog("zh-CN")
	if cat.Locale() != "zh-CN" {
		t.Fatalf("locale = %q, want zh-CN", cat.Locale())
	}
	if got := cat.Format("EVENT_FULL", nil); got != "活动名额已满。" {
		t.Fatalf("Format() = %q", got)
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	got := GetCatalog("en-US").Format("STARTER_PACK_ALREADY_REDEEMED", map[string]string{"Email": "a@b.c"})
	if got != "The starter pack has already been claimed for a@b.c." {
		t.Fatalf("Format() = %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if got := cat.Format("code", nil); got != "hello " {
		t.Fatalf("expected missing metadata to render empty, got %q", got)
	}
	if got := cat.Format("code", map[string]string{"Name": "Ada"}); got != "hello Ada" {
		t.Fatalf("Format() = %q, want hello Ada", got)
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestFormatTemplateExecutionErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ call .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ call .Name }}" {
		t.Fatal("expected template fallback on execute error")
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}
