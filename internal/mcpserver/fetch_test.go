package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/slidesmith/internal/testutil"
)

func allowAll(netip.Addr) bool { return false }

func TestBlockedAddr(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1":        true,
		"::1":              true,
		"169.254.169.254":  true,
		"0.0.0.0":          true,
		"::ffff:127.0.0.1": true,
		"93.184.216.34":    false,
		"10.0.0.8":         false,
	}
	for in, want := range cases {
		if got := blockedAddr(netip.MustParseAddr(in)); got != want {
			t.Errorf("blockedAddr(%s) = %v, want %v", in, got, want)
		}
	}
}

func TestImageFetcher_Fetch(t *testing.T) {
	png, _ := base64.StdEncoding.DecodeString(testutil.PixelPNG)
	mux := http.NewServeMux()
	mux.HandleFunc("/logo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write(png)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/logo", http.StatusFound)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	f := newImageFetcher(allowAll)
	ctx := context.Background()

	name, data, err := f.Fetch(ctx, ts.URL+"/moved")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasSuffix(name, ".png") || len(data) != len(png) {
		t.Errorf("name = %q, %d bytes", name, len(data))
	}

	if _, _, err := f.Fetch(ctx, ts.URL+"/gone"); err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("404: %v", err)
	}
	if _, _, err := f.Fetch(ctx, "ftp://example.com/a.png"); err == nil {
		t.Error("ftp accepted")
	}
}

func TestImageFetcher_BlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request reached the server")
	}))
	defer ts.Close()

	f := newImageFetcher(blockedAddr)
	for _, u := range []string{ts.URL + "/x.png", "http://metadata.google.internal/computeMetadata/v1/"} {
		if _, _, err := f.Fetch(context.Background(), u); !errors.Is(err, errBlockedHost) {
			t.Errorf("Fetch(%s) = %v", u, err)
		}
	}
	if err := f.guard("tcp", "127.0.0.1:80", nil); !errors.Is(err, errBlockedHost) {
		t.Errorf("guard = %v", err)
	}
}

func TestImageName(t *testing.T) {
	u, _ := url.Parse("https://x.test/a/logo.png")
	if got := imageName(u, ""); got != "logo.png" {
		t.Errorf("path name = %q", got)
	}
	if got := imageName(u, "image/jpeg"); !strings.HasSuffix(got, ".jpg") {
		t.Errorf("content type should win: %q", got)
	}
	u, _ = url.Parse("https://x.test/img")
	if got := imageName(u, "text/html"); !strings.HasSuffix(got, ".bin") {
		t.Errorf("fallback = %q", got)
	}
}
