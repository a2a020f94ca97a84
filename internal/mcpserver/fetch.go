package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/starford/slidesmith/internal/deckservice"
)

const (
	fetchTimeout = 30 * time.Second
	maxRedirects = 5
)

var errBlockedHost = errors.New("blocked host")

var imageExts = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// blockedAddr reports addresses a remote image URL must never reach:
// loopback, link-local (which includes cloud metadata at 169.254.169.254)
// and unspecified.
func blockedAddr(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsLoopback() || a.IsLinkLocalUnicast() || a.IsLinkLocalMulticast() || a.IsUnspecified()
}

// imageFetcher downloads remote images for attach_image. The address check
// runs on every dialed connection, so redirects and DNS answers are covered
// as well as the literal host.
type imageFetcher struct {
	client  *http.Client
	blocked func(netip.Addr) bool
}

func newImageFetcher(blocked func(netip.Addr) bool) *imageFetcher {
	f := &imageFetcher{blocked: blocked}
	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: f.guard}
	f.client = &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (max %d)", maxRedirects)
			}
			return f.checkHost(req.URL.Hostname())
		},
	}
	return f
}

func (f *imageFetcher) guard(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	return f.checkHost(host)
}

func (f *imageFetcher) checkHost(host string) error {
	if strings.EqualFold(host, "metadata.google.internal") {
		return fmt.Errorf("%w: %s", errBlockedHost, host)
	}
	if a, err := netip.ParseAddr(host); err == nil && f.blocked(a) {
		return fmt.Errorf("%w: %s", errBlockedHost, host)
	}
	return nil
}

// Fetch downloads rawURL and returns a file name whose extension matches
// the response Content-Type when it names a known image type.
func (f *imageFetcher) Fetch(ctx context.Context, rawURL string) (string, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, fmt.Errorf("unsupported scheme %q (only http/https)", u.Scheme)
	}
	if err := f.checkHost(u.Hostname()); err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, deckservice.MaxAssetSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("download failed: %w", err)
	}
	if len(data) > deckservice.MaxAssetSize {
		return "", nil, fmt.Errorf("image too large: exceeds %d bytes", deckservice.MaxAssetSize)
	}
	return imageName(u, resp.Header.Get("Content-Type")), data, nil
}

// imageName prefers the Content-Type extension, then the URL's last path
// segment, so the asset store can check the bytes against the extension.
func imageName(u *url.URL, contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := imageExts[mt]; ok {
			return uuid.NewString() + ext
		}
	}
	if base := path.Base(u.Path); strings.Contains(base, ".") {
		return base
	}
	return uuid.NewString() + ".bin"
}
