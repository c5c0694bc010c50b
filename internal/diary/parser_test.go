package diary_test

import (
	"strings"
	"testing"

	"go-film-recap/internal/diary"
	"go-film-recap/internal/rules"
)

const origin = "https://letterboxd.com"

func newParser() *diary.Parser {
	return diary.NewParser(origin, rules.Default())
}

func TestParser_PrimaryRows(t *testing.T) {
	html := `<html><body><table>
    <tr class="diary-entry-row" data-viewing-date="2025-03-14">
      <td><h3><a href="/film/heat/">Heat</a></h3></td>
    </tr>
    <tr class="diary-entry-row">
      <td><time datetime="2025-03-15T08:00:00Z"></time><h3><a href="https://ex/film/ran/">Ran</a></h3></td>
    </tr>
    </table></body></html>`
	got := newParser().Parse(html)
	if len(got) != 2 {
		t.Fatalf("entries=%d want=2", len(got))
	}
	if got[0].Date != "2025-03-14" || got[0].Title != "Heat" {
		t.Fatalf("entry[0]=%+v", got[0])
	}
	if got[0].FilmURL != origin+"/film/heat/" {
		t.Fatalf("expect absolute url, got %q", got[0].FilmURL)
	}
	// datetime 截断到前 10 个字符
	if got[1].Date != "2025-03-15" {
		t.Fatalf("entry[1].Date=%q want=2025-03-15", got[1].Date)
	}
	// 已是绝对链接的不再改写
	if got[1].FilmURL != "https://ex/film/ran/" {
		t.Fatalf("entry[1].FilmURL=%q", got[1].FilmURL)
	}
}

func TestParser_DateFromDayLink(t *testing.T) {
	html := `<table><tr class="diary-entry-row">
      <td><a href="/u/diary/films/for/2025/07/04/">4 Jul</a><h3><a href="/film/alien/">Alien</a></h3></td>
    </tr></table>`
	got := newParser().Parse(html)
	if len(got) != 1 {
		t.Fatalf("entries=%d want=1", len(got))
	}
	if got[0].Date != "2025-07-04" {
		t.Fatalf("date=%q want=2025-07-04", got[0].Date)
	}
}

func TestParser_DateAttrWinsOverTimeAndDayLink(t *testing.T) {
	html := `<table><tr class="diary-entry-row" data-viewing-date="2025-01-01">
      <td><time datetime="2025-02-02"></time>
      <a href="/u/diary/films/for/2025/03/03/">x</a>
      <h3><a href="/film/solaris/">Solaris</a></h3></td>
    </tr></table>`
	got := newParser().Parse(html)
	if len(got) != 1 || got[0].Date != "2025-01-01" {
		t.Fatalf("got %+v, want date=2025-01-01", got)
	}
}

func TestParser_RowWithoutLinkSkipped(t *testing.T) {
	html := `<table>
    <tr class="diary-entry-row" data-viewing-date="2025-03-14"><td><h3>no link</h3></td></tr>
    <tr class="diary-entry-row" data-viewing-date="2025-03-15"><td><h3><a href="/film/ok/">Ok</a></h3></td></tr>
    </table>`
	got := newParser().Parse(html)
	if len(got) != 1 || got[0].Title != "Ok" {
		t.Fatalf("got %+v, want only the linked row", got)
	}
}

func TestParser_RowFallbackWhenNoTaggedRows(t *testing.T) {
	// 没有 diary-entry-row 标记时退化为所有行
	html := `<table><tr data-viewing-date="2025-05-05">
      <td><h2><a href="/film/stalker/">Stalker</a></h2></td>
    </tr></table>`
	got := newParser().Parse(html)
	if len(got) != 1 || got[0].Date != "2025-05-05" || got[0].Title != "Stalker" {
		t.Fatalf("got %+v", got)
	}
}

func TestParser_MissingDateSurfacesEmpty(t *testing.T) {
	html := `<table><tr class="diary-entry-row"><td><h3><a href="/film/m/">M</a></h3></td></tr></table>`
	got := newParser().Parse(html)
	if len(got) != 1 {
		t.Fatalf("entries=%d want=1", len(got))
	}
	if got[0].Date != "" {
		t.Fatalf("date=%q want empty (filtered by caller)", got[0].Date)
	}
}

func TestParser_FallbackOnlyOnTotalFailure(t *testing.T) {
	// 主策略产出 1 条：即使页面另有影片链接，也不得触发整页回退
	html := `<div><a href="/film/stray/">Stray link</a></div>
    <table><tr class="diary-entry-row" data-viewing-date="2025-03-14">
      <td><h3><a href="/film/heat/">Heat</a></h3></td>
    </tr></table>`
	got := newParser().Parse(html)
	if len(got) != 1 {
		t.Fatalf("entries=%d want=1 (fallback must not fire)", len(got))
	}
	if !strings.HasSuffix(got[0].FilmURL, "/film/heat/") {
		t.Fatalf("unexpected entry %+v", got[0])
	}
}

func TestParser_WholePageFallback(t *testing.T) {
	// 无任何行结构：回退到整页影片链接扫描，日期取外层容器
	html := `<div data-viewing-date="2025-08-08">
      <a href="/film/barbie/">Barbie</a>
    </div>
    <section><time datetime="2025-08-09T10:00:00Z"></time>
      <p><a href="/film/oppenheimer/">Oppenheimer</a></p>
    </section>`
	got := newParser().Parse(html)
	if len(got) != 2 {
		t.Fatalf("entries=%d want=2", len(got))
	}
	if got[0].Date != "2025-08-08" || got[0].Title != "Barbie" {
		t.Fatalf("entry[0]=%+v", got[0])
	}
	if got[1].Date != "2025-08-09" {
		t.Fatalf("entry[1].Date=%q want=2025-08-09", got[1].Date)
	}
	for _, e := range got {
		if !strings.HasPrefix(e.FilmURL, origin+"/film/") {
			t.Fatalf("expect absolute film url, got %q", e.FilmURL)
		}
	}
}

func TestParser_EmptyPage(t *testing.T) {
	if got := newParser().Parse(`<html><body><p>nothing here</p></body></html>`); len(got) != 0 {
		t.Fatalf("entries=%d want=0", len(got))
	}
}
