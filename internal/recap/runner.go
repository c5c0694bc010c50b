// 包 recap 负责单次回顾的主流程编排：
// 档案存在性检查 → 分页抓取 → 统计汇总 → 近期动态补充 → 流水落库。
package recap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-film-recap/internal/config"
	"go-film-recap/internal/diary"
	"go-film-recap/internal/feed"
	"go-film-recap/internal/fetch"
	"go-film-recap/internal/logx"
	"go-film-recap/internal/model"
	"go-film-recap/internal/rules"
	"go-film-recap/internal/stats"
	"go-film-recap/internal/store"
)

// ErrUserNotFound 表示档案页返回 404（用户不存在或未公开）。
var ErrUserNotFound = errors.New("user not found")

// Runner 持有配置/HTTP 客户端/存储/选择器预设。
type Runner struct {
	cfg    *config.Config
	cl     *fetch.Client
	st     *store.SQLite // 可为 nil：关闭流水记录
	preset rules.DiaryPage
}

// New 创建 Runner。
func New(cfg *config.Config, cl *fetch.Client, st *store.SQLite, preset rules.DiaryPage) *Runner {
	return &Runner{cfg: cfg, cl: cl, st: st, preset: preset.Normalized()}
}

// ProfileURL 构造用户档案页地址。
func (r *Runner) ProfileURL(user string) string {
	return strings.TrimSuffix(r.cfg.SiteOrigin, "/") + "/" + user + "/"
}

// Build 生成一份年度回顾。传输层失败原样上抛，由调用方折算为 502；
// 档案页 404 返回 ErrUserNotFound；其余情况总能产出载荷
//（抓取失败以 stopped_because 表达）。
func (r *Runner) Build(ctx context.Context, user string, year int) (*model.Recap, error) {
	start := time.Now()
	pr, err := r.cl.Get(ctx, r.ProfileURL(user))
	if err != nil {
		return nil, fmt.Errorf("GET profile %s: %w", user, err)
	}
	if pr.Status == 404 {
		return nil, ErrUserNotFound
	}

	pg := diary.NewPaginator(r.cl, r.cfg.SiteOrigin, r.cfg.MaxPages, r.preset)
	fr, err := pg.FetchYear(ctx, user, year)
	if err != nil {
		return nil, err
	}
	logx.Infof("抓取完成：user=%s year=%d 页数=%d 条目=%d 停止原因=%s",
		user, year, fr.PagesFetched, len(fr.Entries), fr.StoppedBecause)

	rec := &model.Recap{
		User:           user,
		Year:           year,
		TotalEntries:   len(fr.Entries),
		PagesFetched:   fr.PagesFetched,
		StoppedBecause: fr.StoppedBecause,
		Stats:          stats.Compute(fr.Entries),
		Diagnostics:    fr.Diagnostics,
		GeneratedAt:    time.Now(),
	}
	if !r.cfg.DisableFeed && fr.Diagnostics.FeedLink != "" {
		items, err := feed.Recent(ctx, r.cl, fr.Diagnostics.FeedLink, r.cfg.RecentFeedNum)
		if err != nil {
			// 软失败：回顾照常返回，只缺近期动态
			logx.Warnf("近期动态获取失败：%v", err)
		} else {
			rec.Recent = items
		}
	}
	r.journal(ctx, rec, time.Since(start))
	return rec, nil
}

// journal 写入抓取流水并按保留期清理（失败仅告警，不影响响应）。
func (r *Runner) journal(ctx context.Context, rec *model.Recap, cost time.Duration) {
	if r.st == nil {
		return
	}
	l := model.FetchLog{
		User:       rec.User,
		Year:       rec.Year,
		Pages:      rec.PagesFetched,
		Entries:    rec.TotalEntries,
		StopReason: rec.StoppedBecause,
		DurationMS: cost.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err := r.st.InsertFetchLog(ctx, l); err != nil {
		logx.Warnf("写入抓取流水失败：%v", err)
		return
	}
	if err := r.st.CleanOldLogs(ctx, r.cfg.OutdateCleanDays); err != nil {
		logx.Warnf("清理过期流水失败：%v", err)
	}
}
