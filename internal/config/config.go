// 包 config 负责加载与校验应用配置（settings.yaml），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// 仅保留当前需要的字段，避免过度设计（KISS/YAGNI）。
type Config struct {
	SiteOrigin       string   `yaml:"SITE_ORIGIN"`
	ListenAddr       string   `yaml:"LISTEN_ADDR"`
	MaxPages         int      `yaml:"MAX_PAGES"`
	RecentFeedNum    int      `yaml:"RECENT_FEED_NUM"`
	DisableFeed      bool     `yaml:"DISABLE_FEED"`
	DisableHistory   bool     `yaml:"DISABLE_HISTORY"`
	OutdateCleanDays int      `yaml:"OUTDATE_CLEAN"`
	Database         Database `yaml:"DATABASE"`
	Network          Network  `yaml:"NETWORK"`
	Proxy            Proxy    `yaml:"PROXY"`
	LogLevel         string   `yaml:"LOG_LEVEL"`
	LogFormat        string   `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale        string   `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor         string   `yaml:"LOG_COLOR"`  // auto|always|never
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default)
	DSN  string `yaml:"dsn"`  // ./recap.db
}

type Network struct {
	// TimeoutSeconds：整体请求超时；Retry：仅传输层失败的重试次数
	TimeoutSeconds int `yaml:"timeout_seconds"`
	Retry          int `yaml:"retry"`
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

func Load(path string) (*Config, error) {
	// Load 从文件读取 YAML 并反序列化为 Config，同时进行基础校验与默认值填充。
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// HardMaxPages 为翻页硬上限：配置只能调低，不能越过它。
const HardMaxPages = 30

func (c *Config) Validate() error {
	// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
	if c.SiteOrigin == "" {
		c.SiteOrigin = "https://letterboxd.com"
	}
	if !strings.HasPrefix(c.SiteOrigin, "http://") && !strings.HasPrefix(c.SiteOrigin, "https://") {
		return fmt.Errorf("SITE_ORIGIN must be an absolute http(s) url: %s", c.SiteOrigin)
	}
	c.SiteOrigin = strings.TrimSuffix(c.SiteOrigin, "/")
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.MaxPages < 0 {
		return errors.New("MAX_PAGES must be >= 0")
	}
	if c.MaxPages == 0 || c.MaxPages > HardMaxPages {
		c.MaxPages = HardMaxPages
	}
	if c.RecentFeedNum < 0 {
		return errors.New("RECENT_FEED_NUM must be >= 0")
	}
	if c.RecentFeedNum == 0 {
		c.RecentFeedNum = 10
	}
	if c.OutdateCleanDays < 0 {
		return errors.New("OUTDATE_CLEAN must be >= 0")
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./recap.db"
	}
	if c.Network.TimeoutSeconds <= 0 {
		c.Network.TimeoutSeconds = 25
	}
	if c.Network.Retry < 0 {
		c.Network.Retry = 0
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	// DisableFeed/DisableHistory 默认为 false，显式开启时才跳过对应功能
	return nil
}

// Default 返回一份填好默认值的配置（无配置文件时使用）。
func Default() *Config {
	c := &Config{}
	_ = c.Validate()
	return c
}
