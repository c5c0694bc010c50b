// 包 model 定义导出的数据模型（日记条目/抓取结果/统计/回顾载荷）。
package model

import "time"

// RawEntry 为解析器的原始输出：字段缺失以空串带出，由上层过滤，
// 解析阶段从不报错。
type RawEntry struct {
	Date    string
	Title   string
	FilmURL string
}

// DiaryEntry 为进入累计序列的条目：Date 与 FilmURL 必定非空。
// 条目在累计后不再修改，响应构建完成即丢弃（不持久化）。
type DiaryEntry struct {
	Date    string `json:"date"` // "2025-03-14"（UTC 日历日，无时间部分）
	Title   string `json:"title,omitempty"`
	FilmURL string `json:"film_url"`
}

// Diagnostics 记录分页过程的观测信息，仅用于排障，不参与正确性。
type Diagnostics struct {
	LastURL   string `json:"last_url"`
	FinalURL  string `json:"final_url"`
	PageTitle string `json:"page_title"`
	LinkCount int    `json:"link_count"` // 选择器命中的影片链接数
	RawCount  int    `json:"raw_count"`  // 正文子串朴素计数（独立启发式）
	FeedLink  string `json:"feed_link,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
}

// FetchResult 为一次年度抓取的聚合结果，分页循环结束后不再修改。
type FetchResult struct {
	Year           int          `json:"year"`
	PagesFetched   int          `json:"pages_fetched"`
	Entries        []DiaryEntry `json:"entries"`
	StoppedBecause string       `json:"stopped_because"`
	Diagnostics    Diagnostics  `json:"diagnostics"`
}

// StreakResult 为最长连击：Length=0 时 Start/End 为空；
// Length>=1 时两端均落在去重后的日期集合内，且 End = Start + (Length-1) 天。
type StreakResult struct {
	Length int    `json:"length"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// MonthCount 为某月（"2025-03"）的观影次数。
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DayCount 为某日的观影次数。
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StatsResult 为统计输出：Top 列表最多 5 项，按次数降序。
type StatsResult struct {
	ActiveDays    int          `json:"active_days"`
	TopMonths     []MonthCount `json:"top_months"`
	TopDays       []DayCount   `json:"top_days"`
	LongestStreak StreakResult `json:"longest_streak"`
}

// FeedItem 为订阅中的近期动态条目（回顾的可选补充信息）。
type FeedItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}

// Recap 为对外响应载荷。
type Recap struct {
	User           string      `json:"user"`
	Year           int         `json:"year"`
	TotalEntries   int         `json:"total_entries"`
	PagesFetched   int         `json:"pages_fetched"`
	StoppedBecause string      `json:"stopped_because"`
	Stats          StatsResult `json:"stats"`
	Recent         []FeedItem  `json:"recent,omitempty"`
	Diagnostics    Diagnostics `json:"diagnostics"`
	GeneratedAt    time.Time   `json:"generated_at"`
}

// FetchLog 为写入 sqlite 的抓取流水。只记录请求元数据，
// 统计结果本身不落库。
type FetchLog struct {
	User       string    `json:"user"`
	Year       int       `json:"year"`
	Pages      int       `json:"pages"`
	Entries    int       `json:"entries"`
	StopReason string    `json:"stop_reason"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
