package robots

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harvestlab/newsharvest/internal/cache"
)

func newHTTPCache(t *testing.T) *cache.HTTPCache {
	t.Helper()
	return &cache.HTTPCache{Dir: t.TempDir()}
}

const sampleRobots = `# harvester rules
User-agent: *
Disallow: /private/
Disallow: /search
Allow: /private/press/
Crawl-delay: 2

User-agent: newsharvest
Disallow: /drafts/
`

func TestParseAndAllows(t *testing.T) {
	rules := Parse(sampleRobots)
	if got := len(rules.Groups); got != 2 {
		t.Fatalf("groups = %d, want 2", got)
	}

	cases := []struct {
		ua   string
		path string
		want bool
	}{
		{"other-bot/1.0", "/news/story", true},
		{"other-bot/1.0", "/private/stuff", false},
		{"other-bot/1.0", "/private/press/release", true},
		{"other-bot/1.0", "/search?q=x", false},
		// The named group replaces the wildcard group entirely.
		{"newsharvest/1.0", "/drafts/wip", false},
		{"newsharvest/1.0", "/private/stuff", true},
	}
	for _, c := range cases {
		if got := rules.Allows(c.ua, c.path); got != c.want {
			t.Errorf("Allows(%q, %q) = %v, want %v", c.ua, c.path, got, c.want)
		}
	}
}

func TestAllows_Wildcards(t *testing.T) {
	rules := Parse("User-agent: *\nDisallow: /*.pdf$\nDisallow: /tmp*\n")
	cases := []struct {
		path string
		want bool
	}{
		{"/report.pdf", false},
		{"/report.pdf.html", true},
		{"/tmp", false},
		{"/tmpfiles/x", false},
		{"/news/story", true},
	}
	for _, c := range cases {
		if got := rules.Allows("any", c.path); got != c.want {
			t.Errorf("Allows(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestCrawlDelay(t *testing.T) {
	rules := Parse(sampleRobots)
	d := rules.CrawlDelay("other-bot/1.0")
	if d == nil || *d != 2*time.Second {
		t.Fatalf("CrawlDelay = %v, want 2s", d)
	}
	if got := rules.CrawlDelay("newsharvest/1.0"); got != nil {
		t.Fatalf("CrawlDelay for named group = %v, want nil", got)
	}
}

func TestZeroRulesAllowEverything(t *testing.T) {
	var rules Rules
	if !rules.Allows("any", "/anything") {
		t.Fatal("zero rules should allow everything")
	}
}

func TestManager_FetchAndMemoryCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	m := &Manager{HTTPClient: srv.Client(), UserAgent: "newsharvest/1.0"}
	ctx := context.Background()

	rules, err := m.RulesFor(ctx, srv.URL+"/news/story")
	if err != nil {
		t.Fatalf("RulesFor: %v", err)
	}
	if rules.Allows("newsharvest/1.0", "/private/x") {
		t.Fatal("expected /private/ to be disallowed")
	}

	if _, err := m.RulesFor(ctx, srv.URL+"/other/page"); err != nil {
		t.Fatalf("RulesFor second call: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("robots.txt fetched %d times, want 1", n)
	}
}

func TestManager_MissingRobotsIsPermissive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	m := &Manager{HTTPClient: srv.Client()}
	rules, err := m.RulesFor(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("RulesFor: %v", err)
	}
	if !rules.Allows("any", "/whatever") {
		t.Fatal("missing robots.txt should allow everything")
	}
}

func TestManager_ConditionalRevalidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	hc := newHTTPCache(t)
	m := &Manager{HTTPClient: srv.Client(), Cache: hc, TTL: time.Nanosecond}
	ctx := context.Background()

	if _, err := m.RulesFor(ctx, srv.URL+"/a"); err != nil {
		t.Fatalf("first RulesFor: %v", err)
	}
	// TTL has lapsed; the second call revalidates and reads the cached body.
	time.Sleep(time.Millisecond)
	rules, err := m.RulesFor(ctx, srv.URL+"/b")
	if err != nil {
		t.Fatalf("second RulesFor: %v", err)
	}
	if rules.Allows("any", "/private/x") {
		t.Fatal("revalidated rules should still disallow /private/")
	}
}

func TestManager_ConcurrentCallers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	m := &Manager{HTTPClient: srv.Client(), UserAgent: "newsharvest/1.0"}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rules, err := m.RulesFor(context.Background(), srv.URL+"/news/story")
			if err != nil {
				errs <- err
				return
			}
			if rules.Allows("any", "/private/x") {
				errs <- errExpectedDisallow
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent RulesFor: %v", err)
	}
}

var errExpectedDisallow = errors.New("expected /private/ to be disallowed")

func TestManager_RejectsNonHTTP(t *testing.T) {
	m := &Manager{}
	if _, err := m.RulesFor(context.Background(), "ftp://example.com/x"); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}
