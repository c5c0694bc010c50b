package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go-film-recap/internal/config"
	"go-film-recap/internal/fetch"
	"go-film-recap/internal/model"
	"go-film-recap/internal/recap"
	"go-film-recap/internal/rules"
	"go-film-recap/internal/server"
	"go-film-recap/internal/store"
)

// newSite 模拟目标站点：alice 的档案页、两页日记与订阅。
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/alice/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><title>alice</title></html>`))
	})
	mux.HandleFunc("/alice/diary/films/for/2025/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>diary</title>
        <link rel="alternate" type="application/rss+xml" href="/alice/rss/"></head>
        <body><table>
        <tr class="diary-entry-row" data-viewing-date="2025-01-01"><td><h3><a href="/film/heat/">Heat</a></h3></td></tr>
        <tr class="diary-entry-row" data-viewing-date="2025-01-02"><td><h3><a href="/film/ran/">Ran</a></h3></td></tr>
        <tr class="diary-entry-row" data-viewing-date="2025-01-03"><td><h3><a href="/film/alien/">Alien</a></h3></td></tr>
        </table></body></html>`))
	})
	mux.HandleFunc("/alice/diary/films/for/2025/page/2/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><table></table></body></html>`))
	})
	mux.HandleFunc("/alice/rss/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>alice</title><link>x</link>
        <item><title>Alien, 1979</title><link>https://ex/film/alien/</link><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
        </channel></rss>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func newAPI(t *testing.T, site *httptest.Server, st *store.SQLite) *httptest.Server {
	t.Helper()
	cfg := &config.Config{SiteOrigin: site.URL, MaxPages: 5}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cl, err := fetch.New(fetch.Options{Timeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("fetch client: %v", err)
	}
	runner := recap.New(cfg, cl, st, rules.Default())
	api := httptest.NewServer(server.New(runner, st).Routes())
	t.Cleanup(api.Close)
	return api
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestRecapEndpoint(t *testing.T) {
	site := newSite(t)
	defer site.Close()
	api := newAPI(t, site, nil)

	var rec model.Recap
	code := getJSON(t, api.URL+"/api/recap/alice/2025", &rec)
	if code != http.StatusOK {
		t.Fatalf("status=%d want=200", code)
	}
	if rec.User != "alice" || rec.Year != 2025 {
		t.Fatalf("recap=%+v", rec)
	}
	if rec.TotalEntries != 3 || rec.PagesFetched != 2 {
		t.Fatalf("entries=%d pages=%d", rec.TotalEntries, rec.PagesFetched)
	}
	if rec.StoppedBecause != "no_entries_on_page" {
		t.Fatalf("stopped_because=%q", rec.StoppedBecause)
	}
	if rec.Stats.ActiveDays != 3 || rec.Stats.LongestStreak.Length != 3 {
		t.Fatalf("stats=%+v", rec.Stats)
	}
	if rec.Stats.LongestStreak.Start != "2025-01-01" || rec.Stats.LongestStreak.End != "2025-01-03" {
		t.Fatalf("streak=%+v", rec.Stats.LongestStreak)
	}
	if len(rec.Recent) != 1 || rec.Recent[0].Title != "Alien, 1979" {
		t.Fatalf("recent=%+v", rec.Recent)
	}
	if rec.Diagnostics.FeedLink == "" {
		t.Fatalf("diagnostics=%+v", rec.Diagnostics)
	}
}

func TestRecapEndpoint_UserNotFound(t *testing.T) {
	site := newSite(t)
	defer site.Close()
	api := newAPI(t, site, nil)

	var body map[string]string
	code := getJSON(t, api.URL+"/api/recap/ghost/2025", &body)
	if code != http.StatusNotFound {
		t.Fatalf("status=%d want=404", code)
	}
	if body["error"] != "user_not_found" {
		t.Fatalf("body=%v", body)
	}
}

func TestRecapEndpoint_BadYear(t *testing.T) {
	site := newSite(t)
	defer site.Close()
	api := newAPI(t, site, nil)

	var body map[string]string
	code := getJSON(t, api.URL+"/api/recap/alice/abcd", &body)
	if code != http.StatusBadRequest {
		t.Fatalf("status=%d want=400", code)
	}
}

func TestRecapEndpoint_UpstreamDown(t *testing.T) {
	site := newSite(t)
	site.Close() // 源站不可达：传输层失败折算 502
	api := newAPI(t, site, nil)

	var body map[string]string
	code := getJSON(t, api.URL+"/api/recap/alice/2025", &body)
	if code != http.StatusBadGateway {
		t.Fatalf("status=%d want=502", code)
	}
	if body["error"] != "upstream_unreachable" {
		t.Fatalf("body=%v", body)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	site := newSite(t)
	defer site.Close()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer st.Close()
	api := newAPI(t, site, st)

	var rec model.Recap
	if code := getJSON(t, api.URL+"/api/recap/alice/2025", &rec); code != http.StatusOK {
		t.Fatalf("recap status=%d", code)
	}
	var logs []model.FetchLog
	if code := getJSON(t, api.URL+"/api/history", &logs); code != http.StatusOK {
		t.Fatalf("history status=%d", code)
	}
	if len(logs) != 1 {
		t.Fatalf("logs=%d want=1", len(logs))
	}
	if logs[0].User != "alice" || logs[0].StopReason != "no_entries_on_page" || logs[0].Entries != 3 {
		t.Fatalf("log=%+v", logs[0])
	}
}

func TestHistoryEndpoint_NoStore(t *testing.T) {
	site := newSite(t)
	defer site.Close()
	api := newAPI(t, site, nil)

	var logs []model.FetchLog
	if code := getJSON(t, api.URL+"/api/history", &logs); code != http.StatusOK {
		t.Fatalf("history status=%d", code)
	}
	if len(logs) != 0 {
		t.Fatalf("logs=%d want=0", len(logs))
	}
}

func TestHealthz(t *testing.T) {
	site := newSite(t)
	defer site.Close()
	api := newAPI(t, site, nil)

	var body map[string]string
	if code := getJSON(t, api.URL+"/healthz", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %v", body)
	}
}
