package diary

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-film-recap/internal/feed"
	"go-film-recap/internal/fetch"
	"go-film-recap/internal/logx"
	"go-film-recap/internal/model"
	"go-film-recap/internal/rules"
)

// MaxPages 为翻页硬上限：到达上限不是错误，只是一种停止条件。
const MaxPages = 30

// 停止原因枚举（供可观测性与测试精确匹配）。
const (
	StopNotFound    = "diary_not_found_or_private"
	StopNoEntries   = "no_entries_on_page"
	StopNoCollected = "no_entries_collected"
	StopMaxPages    = "max_pages_reached"
)

// StopHTTP 将非 2xx 状态折算为停止原因，如 diary_http_503。
func StopHTTP(status int) string { return fmt.Sprintf("diary_http_%d", status) }

// Paginator 顺序抓取某用户某年的日记列表页。
// 页数无法预知：下一页是否存在只能由上一页非空推断，因此不做并发。
type Paginator struct {
	cl       *fetch.Client
	origin   string
	maxPages int
	parser   *Parser
	preset   rules.DiaryPage
}

// NewPaginator 创建分页器；maxPages 超界时落回硬上限。
func NewPaginator(cl *fetch.Client, origin string, maxPages int, preset rules.DiaryPage) *Paginator {
	origin = strings.TrimSuffix(origin, "/")
	if maxPages <= 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	preset = preset.Normalized()
	return &Paginator{
		cl:       cl,
		origin:   origin,
		maxPages: maxPages,
		parser:   NewParser(origin, preset),
		preset:   preset,
	}
}

// PageURL 构造年度列表页地址：第 1 页无 page 段，其后为 .../page/{n}/。
func (pg *Paginator) PageURL(user string, year, page int) string {
	base := fmt.Sprintf("%s/%s/diary/films/for/%d/", pg.origin, user, year)
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%spage/%d/", base, page)
}

// FetchYear 逐页抓取直至触发停止条件。循环内不做任何重试：
// 404 与其余非 2xx 一律立即终止并折算为停止原因（数据而非异常）；
// 只有传输层失败才返回 error，由调用方统一处理。
func (pg *Paginator) FetchYear(ctx context.Context, user string, year int) (*model.FetchResult, error) {
	res := &model.FetchResult{Year: year, StoppedBecause: StopMaxPages}
	for page := 1; page <= pg.maxPages; page++ {
		u := pg.PageURL(user, year, page)
		pr, err := pg.cl.Get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("GET diary page %s: %w", u, err)
		}
		res.PagesFetched = page
		pg.observe(&res.Diagnostics, u, pr)
		if pr.Status == 404 {
			res.StoppedBecause = StopNotFound
			break
		}
		if !pr.OK {
			res.StoppedBecause = StopHTTP(pr.Status)
			break
		}
		raw := pg.parser.Parse(pr.Body)
		if len(raw) == 0 {
			// 年度列表不会在中途合法地出现空页：空页即数据尽头
			res.StoppedBecause = StopNoEntries
			break
		}
		for _, e := range raw {
			if e.Date == "" || e.FilmURL == "" {
				continue
			}
			res.Entries = append(res.Entries, model.DiaryEntry{
				Date:    clipDate(e.Date),
				Title:   e.Title,
				FilmURL: e.FilmURL,
			})
		}
		logx.Debugf("第 %d 页解析完成：原始=%d 累计=%d", page, len(raw), len(res.Entries))
	}
	if len(res.Entries) == 0 && res.StoppedBecause == StopMaxPages {
		// 区分“翻满上限但有数据”与“翻满上限却一无所获”
		res.StoppedBecause = StopNoCollected
	}
	return res, nil
}

// observe 逐页覆盖诊断信息。两套链接计数是相互独立的启发式
// （选择器命中 vs 正文子串朴素计数），仅用于排障，不参与正确性。
func (pg *Paginator) observe(d *model.Diagnostics, reqURL string, pr *fetch.Page) {
	d.LastURL = reqURL
	d.FinalURL = pr.FinalURL
	d.RawCount = strings.Count(pr.Body, pg.preset.FilmPath)
	d.Snippet = snippet(pr.Body, 400)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pr.Body))
	if err != nil {
		return
	}
	d.PageTitle = strings.TrimSpace(doc.Find("title").First().Text())
	d.LinkCount = doc.Find(`a[href*="` + pg.preset.FilmPath + `"]`).Length()
	if fl := feed.DetectLink(doc, pg.origin); fl != "" {
		d.FeedLink = fl
	}
}

// snippet 截取正文前 n 个字节作为诊断样本。
func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
