// 包 diary 负责日记页解析与分页抓取：
// - Parser：按选择器预设抽取 (date, title, filmUrl) 原始条目，支持整页回退策略
// - Paginator：顺序翻页、停止条件判定与诊断记录
package diary

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-film-recap/internal/model"
	"go-film-recap/internal/rules"
)

// dayLinkRe 从日链接中提取年月日，如 .../diary/films/for/2025/03/14/。
var dayLinkRe = regexp.MustCompile(`diary/films/for/(\d{4})/(\d{2})/(\d{2})`)

// Parser 将单页 HTML 解析为原始条目序列。
type Parser struct {
	origin string
	preset rules.DiaryPage
}

// NewParser 创建解析器；origin 用于相对链接绝对化。
func NewParser(origin string, preset rules.DiaryPage) *Parser {
	return &Parser{origin: strings.TrimSuffix(origin, "/"), preset: preset.Normalized()}
}

// Parse 按顺序尝试各策略，取第一个产出非空结果的：
// 主策略按行抽取；整页回退只在主策略一条都没出时使用，
// 避免把非日记链接混入正常结果。解析永不报错：缺失字段以空串带出，
// 由调用方过滤。
func (p *Parser) Parse(html string) []model.RawEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	strategies := []func(*goquery.Document) []model.RawEntry{
		p.parseRows,
		p.parseFilmLinks,
	}
	for _, try := range strategies {
		if out := try(doc); len(out) > 0 {
			return out
		}
	}
	return nil
}

// parseRows 为主策略：优先匹配标记为日记条目的行，一个都没有时退化为所有行。
// 无标题链接 href 的行不构成条目。
func (p *Parser) parseRows(doc *goquery.Document) []model.RawEntry {
	rows := doc.Find(p.preset.Row)
	if rows.Length() == 0 {
		rows = doc.Find(p.preset.RowFallback)
	}
	var out []model.RawEntry
	rows.Each(func(_ int, row *goquery.Selection) {
		link := row.Find(p.preset.TitleLink).First()
		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		out = append(out, model.RawEntry{
			Date:    clipDate(p.rowDate(row)),
			Title:   strings.TrimSpace(link.Text()),
			FilmURL: p.abs(href),
		})
	})
	return out
}

// rowDate 按优先级取日期：行级日期属性 → time 元素的 datetime → 日链接中的年月日。
func (p *Parser) rowDate(row *goquery.Selection) string {
	if v, ok := row.Attr(p.preset.DateAttr); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if t := row.Find(p.preset.Time).First(); t.Length() > 0 {
		if v, ok := t.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	var day string
	row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := dayLinkRe.FindStringSubmatch(href); m != nil {
			day = m[1] + "-" + m[2] + "-" + m[3]
			return false
		}
		return true
	})
	return day
}

// parseFilmLinks 为整页回退策略：扫描所有含影片路径的链接，
// 标题取链接文本，日期取最近外层容器的日期属性或 time 元素。
func (p *Parser) parseFilmLinks(doc *goquery.Document) []model.RawEntry {
	var out []model.RawEntry
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || !strings.Contains(href, p.preset.FilmPath) {
			return
		}
		out = append(out, model.RawEntry{
			Date:    clipDate(p.containerDate(a)),
			Title:   strings.TrimSpace(a.Text()),
			FilmURL: p.abs(href),
		})
	})
	return out
}

// containerDate 沿祖先链找日期：先找带日期属性的最近容器，再找祖先内的 time 元素。
func (p *Parser) containerDate(a *goquery.Selection) string {
	if c := a.Closest("[" + p.preset.DateAttr + "]"); c.Length() > 0 {
		if v, ok := c.Attr(p.preset.DateAttr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	var date string
	a.Parents().EachWithBreak(func(_ int, parent *goquery.Selection) bool {
		if t := parent.Find(p.preset.Time).First(); t.Length() > 0 {
			if v, ok := t.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
				date = strings.TrimSpace(v)
				return false
			}
		}
		return true
	})
	return date
}

// abs 将相对链接补全为绝对 URL：站内相对路径直接拼接源站 origin。
func (p *Parser) abs(href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return p.origin + href
}

// clipDate 防御性截断：只保留 "YYYY-MM-DD" 前 10 个字符。
func clipDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
