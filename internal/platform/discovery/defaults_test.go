package discovery

import "testing"

func TestDefaultAddrs(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"datastore grpc", DefaultGRPCAddr(ServiceDatastore), "datastore:8090"},
		{"catalog http", DefaultHTTPAddr(ServiceCatalog), "catalog:8092"},
		{"jaeger http", DefaultHTTPAddr(ServiceJaeger), "jaeger:16686"},
		{"local datastore", LocalGRPCAddr(ServiceDatastore), "localhost:8090"},
		{"catalog listen", HTTPListenAddr(ServiceCatalog), ":8092"},
		{"unknown grpc", DefaultGRPCAddr("catalog"), ""},
		{"unknown http", DefaultHTTPAddr("nope"), ""},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestOrDefaultGRPCAddr(t *testing.T) {
	if got := OrDefaultGRPCAddr(" custom:9000 ", ServiceDatastore); got != "custom:9000" {
		t.Fatalf("expected explicit grpc addr to win, got %q", got)
	}
	if got := OrDefaultGRPCAddr("", ServiceDatastore); got != "datastore:8090" {
		t.Fatalf("expected default grpc addr, got %q", got)
	}
}

func TestOrDefaultHTTPBaseURL(t *testing.T) {
	if got := OrDefaultHTTPBaseURL(" https://catalog.example.com ", ServiceCatalog); got != "https://catalog.example.com" {
		t.Fatalf("expected explicit base url to win, got %q", got)
	}
	if got := OrDefaultHTTPBaseURL("", ServiceCatalog); got != "http://catalog:8092" {
		t.Fatalf("expected default catalog base url, got %q", got)
	}
	if got := OrDefaultHTTPBaseURL("", "nope"); got != "" {
		t.Fatalf("expected empty url for unknown service, got %q", got)
	}
}
