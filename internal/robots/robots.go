// Package robots fetches and evaluates robots.txt for polite harvesting.
// Rules are cached in memory per host and revalidated through the shared
// page cache with conditional requests.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/harvestlab/newsharvest/internal/cache"
)

// Rules is the parsed content of one robots.txt file. The zero value
// allows everything.
type Rules struct {
	Groups []Group
}

// Group is one user-agent block.
type Group struct {
	Agents     []string
	Allow      []string
	Disallow   []string
	CrawlDelay *time.Duration
}

// Manager fetches robots.txt per host with an in-memory TTL cache. An
// unreachable or missing robots.txt yields permissive rules, matching
// common crawler practice.
type Manager struct {
	HTTPClient *http.Client
	Cache      *cache.HTTPCache
	UserAgent  string
	// TTL bounds how long parsed rules are served from memory.
	// Zero means 30 minutes.
	TTL time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	rules  Rules
	expiry time.Time
}

// RulesFor returns the rules governing pageURL's host. Only a transport
// failure is an error; HTTP error statuses mean "no rules published".
func (m *Manager) RulesFor(ctx context.Context, pageURL string) (Rules, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Rules{}, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Rules{}, fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	m.mu.Lock()
	if m.now == nil {
		m.now = time.Now
	}
	if m.mem == nil {
		m.mem = make(map[string]memEntry)
	}
	if ent, ok := m.mem[robotsURL]; ok && m.now().Before(ent.expiry) {
		r := ent.rules
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	body, err := m.fetch(ctx, robotsURL)
	if err != nil {
		return Rules{}, err
	}
	rules := Parse(string(body))
	m.store(robotsURL, rules)
	return rules, nil
}

func (m *Manager) fetch(ctx context.Context, robotsURL string) ([]byte, error) {
	var etag, lastMod string
	if m.Cache != nil {
		if meta, err := m.Cache.LoadMeta(ctx, robotsURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && m.Cache != nil:
		body, err := m.Cache.LoadBody(ctx, robotsURL)
		if err != nil {
			return nil, fmt.Errorf("load cached robots: %w", err)
		}
		return body, nil
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read robots: %w", err)
		}
		if m.Cache != nil {
			_ = m.Cache.Save(ctx, robotsURL, "text/plain", resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), body)
		}
		return body, nil
	default:
		// No robots.txt published, or the server refuses it. Either way
		// there are no rules to honor.
		return nil, nil
	}
}

func (m *Manager) store(key string, rules Rules) {
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m.mu.Lock()
	m.mem[key] = memEntry{rules: rules, expiry: m.now().Add(ttl)}
	m.mu.Unlock()
}

// Parse reads robots.txt text into Rules. Unknown directives are ignored.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []Group
	current := Group{}
	flush := func() {
		if len(current.Agents) == 0 && len(current.Allow) == 0 && len(current.Disallow) == 0 && current.CrawlDelay == nil {
			return
		}
		groups = append(groups, current)
		current = Group{}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])
		switch key {
		case "user-agent":
			// A user-agent line after directives starts a new group.
			if len(current.Agents) > 0 && (len(current.Allow) > 0 || len(current.Disallow) > 0 || current.CrawlDelay != nil) {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			current.Allow = append(current.Allow, val)
		case "disallow":
			current.Disallow = append(current.Disallow, val)
		case "crawl-delay":
			if d, err := time.ParseDuration(val + "s"); err == nil && d >= 0 {
				current.CrawlDelay = &d
			}
		}
	}
	flush()
	return Rules{Groups: groups}
}

// Allows reports whether the path may be fetched by the given user agent.
// The most specific matching directive wins; Allow beats Disallow on ties.
// No matching directive means allowed.
func (r Rules) Allows(userAgent, path string) bool {
	grp, ok := r.group(userAgent)
	if !ok {
		return true
	}

	bestScore := -1
	bestAllow := true
	evaluate := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" {
				continue
			}
			if !matchPattern(p, path) {
				continue
			}
			score := specificity(p)
			if score > bestScore || (score == bestScore && isAllow && !bestAllow) {
				bestScore = score
				bestAllow = isAllow
			}
		}
	}
	evaluate(grp.Disallow, false)
	evaluate(grp.Allow, true)

	if bestScore == -1 {
		return true
	}
	return bestAllow
}

// CrawlDelay returns the crawl delay for the given user agent, or nil when
// none is configured.
func (r Rules) CrawlDelay(userAgent string) *time.Duration {
	grp, ok := r.group(userAgent)
	if !ok {
		return nil
	}
	return grp.CrawlDelay
}

// group selects the best-matching user-agent block: longest agent token
// contained in the user agent string, with "*" losing to any named match.
func (r Rules) group(userAgent string) (Group, bool) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx := -1
	bestScore := -1
	for i, g := range r.Groups {
		for _, agent := range g.Agents {
			token := strings.ToLower(strings.TrimSpace(agent))
			var score int
			switch {
			case token == "*":
				score = 0
			case token != "" && strings.Contains(ua, token):
				score = len(token)
			default:
				continue
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}
	if bestIdx < 0 {
		return Group{}, false
	}
	return r.Groups[bestIdx], true
}

// matchPattern matches a robots pattern against a path. "*" matches any
// sequence and a trailing "$" anchors the end; matching is anchored at the
// start of the path.
func matchPattern(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	segs := strings.Split(pattern, "*")

	// First segment must match at the start.
	if !strings.HasPrefix(path, segs[0]) {
		return false
	}
	rest := path[len(segs[0]):]
	for _, seg := range segs[1:] {
		if seg == "" {
			continue
		}
		i := strings.Index(rest, seg)
		if i < 0 {
			return false
		}
		rest = rest[i+len(seg):]
	}
	if anchored {
		last := segs[len(segs)-1]
		if len(segs) > 1 {
			// Wildcard before the anchor: the final literal must sit at
			// the very end of the path.
			if last == "" {
				return true
			}
			return strings.HasSuffix(path, last)
		}
		return rest == ""
	}
	return true
}

// specificity ranks patterns by concrete length, ignoring wildcards and the
// end anchor.
func specificity(pattern string) int {
	pattern = strings.TrimSuffix(pattern, "$")
	return len(strings.ReplaceAll(pattern, "*", ""))
}
