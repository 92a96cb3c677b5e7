package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/skywatch"
	"github.com/fwojciec/skywatch/bloom"
)

// expectedDocuments sizes the dedup filter; publication pages link a few
// hundred PDFs at most.
const expectedDocuments = 4096

// Ensure Source implements skywatch.DocumentSource at compile time.
var _ skywatch.DocumentSource = (*Source)(nil)

// Source discovers PDF document URLs linked from a government publications
// page. Duplicate links (the same document linked from multiple sections)
// are returned once, in document order of first occurrence.
type Source struct {
	client *http.Client
}

// NewSource creates a new Source. A nil client uses a default with
// DefaultFetchTimeout.
func NewSource(client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Source{client: client}
}

// Discover fetches the listing page and returns every linked PDF URL,
// resolved against the page URL and deduplicated.
func (s *Source) Discover(ctx context.Context, listURL string) ([]string, error) {
	base, err := url.Parse(listURL)
	if err != nil {
		return nil, skywatch.Errorf(skywatch.EINVALID, "invalid listing URL %q: %v", listURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, skywatch.Errorf(skywatch.EINVALID, "invalid listing URL %q: %v", listURL, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(listURL, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(listURL, resp.StatusCode); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, skywatch.Errorf(skywatch.EINVALID, "failed to parse listing page: %v", err)
	}

	seen := bloom.NewFilter(expectedDocuments, 0.001)
	var urls []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !isPDFLink(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()

		if seen.Seen(resolved) {
			return
		}
		urls = append(urls, resolved)
	})

	return urls, nil
}

// isPDFLink reports whether an anchor href points at a PDF document.
// Query strings and fragments are ignored.
func isPDFLink(href string) bool {
	if href == "" {
		return false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return strings.HasSuffix(strings.ToLower(href), ".pdf")
}
