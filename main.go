// 命令行入口：
// - 解析 flags 与 settings.yaml/rules.yaml
// - 初始化日志、HTTP 客户端、数据库
// - 默认以 HTTP 服务运行；指定 -user 时执行单次回顾并导出 JSON
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go-film-recap/internal/config"
	"go-film-recap/internal/export"
	"go-film-recap/internal/fetch"
	"go-film-recap/internal/logx"
	"go-film-recap/internal/recap"
	"go-film-recap/internal/rules"
	"go-film-recap/internal/server"
	"go-film-recap/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "settings.yaml", "path to settings.yaml")
		rulesPath  = flag.String("rules", "", "path to rules.yaml (optional)")
		addr       = flag.String("addr", "", "listen address override")
		user       = flag.String("user", "", "one-shot mode: build one recap for this user and exit")
		year       = flag.Int("year", time.Now().UTC().Year(), "diary year for one-shot mode")
		exportPath = flag.String("export", "recap.json", "export json path in one-shot mode")
	)
	flag.Parse()

	// 1) 加载配置与规则（配置文件缺失时用内置默认值运行）
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("load config failed, using defaults: %v", err)
		cfg = config.Default()
	}
	preset := rules.Default()
	if *rulesPath != "" {
		if rl, err := rules.Load(*rulesPath); err == nil {
			if p, ok := rl.GetPreset("default"); ok && p.DiaryPage != nil {
				preset = p.DiaryPage.Normalized()
			}
		} else {
			log.Printf("load rules failed: %v", err)
		}
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	// 2) 初始化日志：级别/格式/语言/颜色
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)

	// 3) 初始化 HTTP 客户端（含代理；重试仅针对传输层失败）
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    time.Duration(cfg.Network.TimeoutSeconds) * time.Second,
		Retry:      cfg.Network.Retry,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	// 4) 抓取流水存储：显式关闭时不打开数据库
	var st *store.SQLite
	if !cfg.DisableHistory {
		st, err = store.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
	} else {
		logx.Infof("抓取流水已关闭：跳过数据库打开")
	}

	runner := recap.New(cfg, cl, st, preset)

	if *user != "" {
		// 5a) 单次模式：生成一份回顾并导出 JSON 后退出
		rec, err := runner.Build(context.Background(), *user, *year)
		if err != nil {
			log.Fatalf("build recap: %v", err)
		}
		if err := export.ToJSONFile(rec, *exportPath); err != nil {
			log.Fatalf("export json: %v", err)
		}
		logx.Infof("已导出 %s：user=%s year=%d 条目=%d 停止原因=%s",
			*exportPath, rec.User, rec.Year, rec.TotalEntries, rec.StoppedBecause)
		return
	}

	// 5b) 服务模式
	srv := server.New(runner, st)
	logx.Infof("开始监听：%s 源站=%s", cfg.ListenAddr, cfg.SiteOrigin)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
