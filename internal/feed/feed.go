// 包 feed 负责近期动态补充：
// - DetectLink：从页面 <link rel=alternate> 声明中找出订阅地址
// - Recent：用 gofeed 解析订阅并归一化为少量近期条目
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"go-film-recap/internal/fetch"
	"go-film-recap/internal/model"
)

// DetectLink 在文档中寻找 rss/atom 的 alternate 声明，返回绝对地址；
// 未声明时返回空串。
func DetectLink(doc *goquery.Document, origin string) string {
	var found string
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		t, _ := s.Attr("type")
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		lr := strings.ToLower(rel)
		lt := strings.ToLower(t)
		if strings.Contains(lr, "alternate") && (strings.Contains(lt, "rss") || strings.Contains(lt, "atom")) {
			found = absURL(origin, href)
			return false
		}
		return true
	})
	return found
}

// absURL 将相对订阅地址补全为绝对 URL。
func absURL(origin, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimSuffix(origin, "/") + href
}

// Recent 抓取订阅并返回最多 max 条近期条目（0 表示不限制）。
func Recent(ctx context.Context, cl *fetch.Client, feedURL string, max int) ([]model.FeedItem, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	pr, err := cl.Get(reqCtx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("GET feed %s: %w", feedURL, err)
	}
	if !pr.OK {
		return nil, fmt.Errorf("feed %s: http %d", feedURL, pr.Status)
	}
	parsed, err := gofeed.NewParser().ParseString(pr.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	items := make([]model.FeedItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		item := model.FeedItem{
			Title: strings.TrimSpace(it.Title),
			Link:  strings.TrimSpace(it.Link),
		}
		if it.PublishedParsed != nil {
			item.Published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			item.Published = *it.UpdatedParsed
		}
		items = append(items, item)
		if max > 0 && len(items) >= max {
			break
		}
	}
	return items, nil
}
