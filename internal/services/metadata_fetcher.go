package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrMetadataFetch wraps every failure of a metadata fetch.
	ErrMetadataFetch = errors.New("metadata fetch failed")
	// ErrBlockedAddress is returned when a URL resolves to a loopback,
	// private or otherwise non-public address.
	ErrBlockedAddress = errors.New("address is not publicly routable")
)

// Metadata is what we keep from a fetched page. Missing values stay nil.
type Metadata struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
}

func (m *Metadata) empty() bool {
	return m.Title == nil && m.Description == nil && m.ThumbnailURL == nil
}

// MetadataFetcher retrieves page metadata for a URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Metadata, error)
}

const (
	maxPageBytes      = 2 << 20
	maxTitleLen       = 255
	maxDescriptionLen = 1000
	maxThumbnailLen   = 2048
)

type selector struct {
	query string
	attr  string // empty: use the element text
}

var (
	titleSelectors = []selector{
		{"meta[property='og:title']", "content"},
		{"meta[name='twitter:title']", "content"},
		{"title", ""},
	}
	descriptionSelectors = []selector{
		{"meta[property='og:description']", "content"},
		{"meta[name='twitter:description']", "content"},
		{"meta[name='description']", "content"},
		{"meta[name='Description']", "content"},
	}
	thumbnailSelectors = []selector{
		{"meta[property='og:image']", "content"},
		{"meta[property='og:image:url']", "content"},
		{"meta[name='twitter:image']", "content"},
		{"meta[name='twitter:image:src']", "content"},
		{"link[rel='image_src']", "href"},
	}
)

// HTMLMetadataFetcher 抓取网页并解析 title / description / 缩略图
type HTMLMetadataFetcher struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	stripper     *bluemonday.Policy
	allowPrivate bool
}

type FetcherOption func(*HTMLMetadataFetcher)

// AllowPrivateNetworks lets the fetcher reach loopback and private
// addresses. Only for local development and tests.
func AllowPrivateNetworks() FetcherOption {
	return func(f *HTMLMetadataFetcher) {
		f.allowPrivate = true
	}
}

// NewHTMLMetadataFetcher creates a fetcher whose every request is bounded
// by timeout. Unless AllowPrivateNetworks is given, connections to
// non-public addresses are refused at dial time, after DNS resolution and
// on every redirect.
func NewHTMLMetadataFetcher(timeout time.Duration, userAgent string, opts ...FetcherOption) *HTMLMetadataFetcher {
	f := &HTMLMetadataFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		stripper:  bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !f.allowPrivate {
		dialer := &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
			Control:   refuseNonPublic,
		}
		transport.DialContext = dialer.DialContext
		// a proxy would be dialed instead of the target
		transport.Proxy = nil
	}
	f.client = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	return f
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func refuseNonPublic(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !isPublicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

func (f *HTMLMetadataFetcher) Fetch(ctx context.Context, pageURL string) (*Metadata, error) {
	target, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || target.Host == "" || (target.Scheme != "http" && target.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrMetadataFetch, pageURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrMetadataFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP status %d", ErrMetadataFetch, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrMetadataFetch, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrMetadataFetch, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMetadataFetch)
	}

	// relative image paths resolve against the final URL after redirects
	base := target
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", ErrMetadataFetch, err)
	}

	meta := &Metadata{
		Title:        f.clean(firstMatch(doc, titleSelectors), maxTitleLen),
		Description:  f.clean(firstMatch(doc, descriptionSelectors), maxDescriptionLen),
		ThumbnailURL: resolveImage(base, firstMatch(doc, thumbnailSelectors)),
	}

	if meta.empty() {
		f.fillFromReadability(body, base, meta)
	}
	if meta.empty() {
		return nil, fmt.Errorf("%w: no parsable content", ErrMetadataFetch)
	}

	return meta, nil
}

// fillFromReadability uses the article extractor when the page head carries
// no usable tags.
func (f *HTMLMetadataFetcher) fillFromReadability(body []byte, base *url.URL, meta *Metadata) {
	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err != nil {
		return
	}
	if meta.Title == nil {
		meta.Title = f.clean(article.Title, maxTitleLen)
	}
	if meta.Description == nil {
		meta.Description = f.clean(article.Excerpt, maxDescriptionLen)
	}
	if meta.ThumbnailURL == nil {
		meta.ThumbnailURL = resolveImage(base, article.Image)
	}
}

func firstMatch(doc *goquery.Document, selectors []selector) string {
	for _, sel := range selectors {
		s := doc.Find(sel.query).First()
		if s.Length() == 0 {
			continue
		}
		var v string
		if sel.attr == "" {
			v = s.Text()
		} else {
			v, _ = s.Attr(sel.attr)
		}
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// clean strips markup, collapses whitespace and truncates to max runes.
func (f *HTMLMetadataFetcher) clean(v string, max int) *string {
	v = html.UnescapeString(f.stripper.Sanitize(v))
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return nil
	}
	if utf8.RuneCountInString(v) > max {
		v = string([]rune(v)[:max])
	}
	return &v
}

func resolveImage(base *url.URL, raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return nil
	}
	s := abs.String()
	if len(s) > maxThumbnailLen {
		return nil
	}
	return &s
}
