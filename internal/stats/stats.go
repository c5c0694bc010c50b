// 包 stats 提供纯函数的日历统计：活跃天数、月度/单日 Top、最长连续观影天数。
// 不做任何 I/O，输入相同则输出确定。
package stats

import (
	"sort"
	"time"

	"go-film-recap/internal/model"
)

// TopN 为 Top 列表的长度上限。
const TopN = 5

// Compute 汇总已过滤的条目列表（每条的 Date 均为 "YYYY-MM-DD"）。
func Compute(entries []model.DiaryEntry) model.StatsResult {
	months := map[string]int{}
	days := map[string]int{}
	for _, e := range entries {
		if len(e.Date) >= 7 {
			months[e.Date[:7]]++
		}
		if e.Date != "" {
			days[e.Date]++
		}
	}
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	res := model.StatsResult{
		ActiveDays:    len(days),
		LongestStreak: LongestStreak(dates),
	}
	for _, kv := range topN(months, TopN) {
		res.TopMonths = append(res.TopMonths, model.MonthCount{Month: kv.key, Count: kv.count})
	}
	for _, kv := range topN(days, TopN) {
		res.TopDays = append(res.TopDays, model.DayCount{Date: kv.key, Count: kv.count})
	}
	return res
}

type kv struct {
	key   string
	count int
}

// topN 按次数降序取前 n；次数相同时按键升序（即时间序），保证输出确定。
func topN(m map[string]int, n int) []kv {
	out := make([]kv, 0, len(m))
	for k, c := range m {
		out = append(out, kv{key: k, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// LongestStreak 计算最长连续观影天数：
// 去重后按字典序升序（ISO 日期的字典序即时间序），单趟扫描，
// 相邻日期的整日差恰为 1 则延长当前连击，否则从当前日期重开。
// 并列时保留先出现的一段（严格大于才更新最优）。无法解析的日期跳过。
func LongestStreak(dates []string) model.StreakResult {
	uniq := map[string]time.Time{}
	for _, d := range dates {
		if _, ok := uniq[d]; ok {
			continue
		}
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		uniq[d] = t
	}
	if len(uniq) == 0 {
		return model.StreakResult{}
	}
	sorted := make([]string, 0, len(uniq))
	for d := range uniq {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	best := model.StreakResult{Length: 1, Start: sorted[0], End: sorted[0]}
	curLen, curStart := 1, sorted[0]
	for i := 1; i < len(sorted); i++ {
		// time.Parse 得到的都是 UTC 零点，整日差不受时区/夏令时偏移干扰
		if uniq[sorted[i]].Sub(uniq[sorted[i-1]]) == 24*time.Hour {
			curLen++
		} else {
			curLen, curStart = 1, sorted[i]
		}
		if curLen > best.Length {
			best = model.StreakResult{Length: curLen, Start: curStart, End: sorted[i]}
		}
	}
	return best
}
