package client

import (
	"testing"
	"time"
)

func TestFormatTimeAgo(t *testing.T) {
	now := baseTime()
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{name: "zero", age: 0, want: "just now"},
		{name: "future", age: -2 * time.Hour, want: "just now"},
		{name: "59 minutes", age: 59 * time.Minute, want: "just now"},
		{name: "59m59s", age: time.Hour - time.Second, want: "just now"},
		{name: "60 minutes", age: time.Hour, want: "1h ago"},
		{name: "119 minutes", age: 119 * time.Minute, want: "1h ago"},
		{name: "23h59m", age: 23*time.Hour + 59*time.Minute, want: "23h ago"},
		{name: "24 hours", age: 24 * time.Hour, want: "1d ago"},
		{name: "47h59m", age: 47*time.Hour + 59*time.Minute, want: "1d ago"},
		{name: "ten days", age: 10 * 24 * time.Hour, want: "10d ago"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTimeAgo(now.Add(-tc.age), now); got != tc.want {
				t.Fatalf("FormatTimeAgo(-%s) = %q, want %q", tc.age, got, tc.want)
			}
		})
	}
}

func TestFormatTimeAgoLocalized(t *testing.T) {
	now := baseTime()
	tests := []struct {
		locale string
		age    time.Duration
		want   string
	}{
		{locale: "zh-CN", age: 30 * time.Minute, want: "刚刚"},
		{locale: "zh-CN", age: 5 * time.Hour, want: "5小时前"},
		{locale: "zh-CN", age: 72 * time.Hour, want: "3天前"},
		{locale: "pt-BR", age: 72 * time.Hour, want: "3d ago"},
	}
	for _, tc := range tests {
		if got := FormatTimeAgoIn(tc.locale, now.Add(-tc.age), now); got != tc.want {
			t.Errorf("FormatTimeAgoIn(%s, -%s) = %q, want %q", tc.locale, tc.age, got, tc.want)
		}
	}
}
