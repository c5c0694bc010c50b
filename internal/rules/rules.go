// 包 rules 负责加载并提供站点解析规则（rules.yaml），
// 以预设名组织日记页的 CSS 选择器；缺省时使用内置 default 预设。
package rules

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules 表示全部规则集合：键为预设名，值为具体规则。
type Rules struct {
	Presets map[string]Preset `yaml:",inline"`
}

// Preset 为单个站点预设的解析规则集合。
type Preset struct {
	DiaryPage *DiaryPage `yaml:"diary_page"`
}

// DiaryPage 描述日记列表页的选择器：
// - row：标记为日记条目的行；row_fallback：主选择器落空时的行候选
// - date_attr/time：行级日期属性与行内时间元素
// - title_link：条目标题链接；film_path：影片链接的路径片段
type DiaryPage struct {
	Row         string `yaml:"row"`
	RowFallback string `yaml:"row_fallback"`
	DateAttr    string `yaml:"date_attr"`
	Time        string `yaml:"time"`
	TitleLink   string `yaml:"title_link"`
	FilmPath    string `yaml:"film_path"`
}

// Default 返回内置的目标站点选择器预设。
func Default() DiaryPage {
	return DiaryPage{
		Row:         "tr.diary-entry-row",
		RowFallback: "tr",
		DateAttr:    "data-viewing-date",
		Time:        "time",
		TitleLink:   "h2 a, h3 a",
		FilmPath:    "/film/",
	}
}

// Normalized 用内置默认值补齐空字段，保证选择器总是可用。
func (d DiaryPage) Normalized() DiaryPage {
	def := Default()
	if d.Row == "" {
		d.Row = def.Row
	}
	if d.RowFallback == "" {
		d.RowFallback = def.RowFallback
	}
	if d.DateAttr == "" {
		d.DateAttr = def.DateAttr
	}
	if d.Time == "" {
		d.Time = def.Time
	}
	if d.TitleLink == "" {
		d.TitleLink = def.TitleLink
	}
	if d.FilmPath == "" {
		d.FilmPath = def.FilmPath
	}
	return d
}

func Load(path string) (*Rules, error) {
	// 从文件加载 YAML 到 Rules.Presets
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(b, &r.Presets); err != nil {
		return nil, fmt.Errorf("unmarshal rules %s: %w", path, err)
	}
	return &r, nil
}

// GetPreset 按名称获取预设（不区分大小写），若为空或不存在则回退到 "default"。
func (r *Rules) GetPreset(name string) (Preset, bool) {
	if r == nil || len(r.Presets) == 0 {
		return Preset{}, false
	}
	if name == "" {
		name = "default"
	}
	if p, ok := r.Presets[name]; ok {
		return p, true
	}
	lower := strings.ToLower(name)
	for k, v := range r.Presets {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	if p, ok := r.Presets["default"]; ok {
		return p, true
	}
	for _, v := range r.Presets {
		return v, true
	}
	return Preset{}, false
}
