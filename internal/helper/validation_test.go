package helper

import (
	"net/http"
	"net/url"
	"testing"
)

func TestIsHTTPURL(t *testing.T) {
	cases := map[string]bool{
		"https://b.thumbs.redditmedia.com/x.jpg": true,
		"http://a.com/x":                         true,
		"  https://a.com  ":                      true,
		"self":                                   false,
		"default":                                false,
		"nsfw":                                   false,
		"":                                       false,
		"ftp://a.com/x":                          false,
		"/relative/path.png":                     false,
		"https://":                               false,
	}
	for in, want := range cases {
		if got := IsHTTPURL(in); got != want {
			t.Errorf("IsHTTPURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://example.com/posts/1")
	cases := []struct {
		ref  string
		want string
	}{
		{"/img/a.png", "https://example.com/img/a.png"},
		{"b.png", "https://example.com/posts/b.png"},
		{"https://cdn.example.com/c.png", "https://cdn.example.com/c.png"},
		{"//cdn.example.com/d.png", "https://cdn.example.com/d.png"},
		{"", ""},
		{"data:image/png;base64,AAAA", ""},
	}
	for _, tc := range cases {
		if got := ResolveURL(base, tc.ref); got != tc.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestSetBrowserHeaders(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	SetBrowserHeaders(req, "test-agent")
	if req.Header.Get("User-Agent") != "test-agent" {
		t.Fatalf("unexpected UA %q", req.Header.Get("User-Agent"))
	}
	if req.Header.Get("Accept-Language") != AcceptLanguage || req.Header.Get("Accept") != AcceptHTML {
		t.Fatalf("missing browser headers: %v", req.Header)
	}
}
