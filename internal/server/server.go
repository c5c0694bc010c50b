// 包 server 提供 HTTP 服务层：chi 路由、JSON 包装与状态码映射。
// 核心失败状态均以 stopped_because 体现在 200 载荷内；
// 只有用户不存在（404）、参数非法（400）与传输层失败（502）走错误响应。
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go-film-recap/internal/logx"
	"go-film-recap/internal/model"
	"go-film-recap/internal/recap"
	"go-film-recap/internal/store"
)

// Server 持有编排器与可选的流水存储。
type Server struct {
	runner *recap.Runner
	st     *store.SQLite // 可为 nil：/api/history 返回空列表
}

// New 创建 Server。
func New(runner *recap.Runner, st *store.SQLite) *Server {
	return &Server{runner: runner, st: st}
}

// Routes 注册路由：年度回顾、抓取历史与健康检查。
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/recap/{user}/{year}", s.handleRecap)
	r.Get("/api/history", s.handleHistory)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if user == "" || err != nil || year < 1900 || year > 2200 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request"})
		return
	}
	rec, err := s.runner.Build(r.Context(), user, year)
	if err != nil {
		if errors.Is(err, recap.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user_not_found"})
			return
		}
		logx.Errorf("回顾生成失败：user=%s year=%d 错误=%v", user, year, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream_unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.st == nil {
		writeJSON(w, http.StatusOK, []model.FetchLog{})
		return
	}
	logs, err := s.st.RecentFetchLogs(r.Context(), 20)
	if err != nil {
		logx.Errorf("查询抓取流水失败：%v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history_unavailable"})
		return
	}
	if logs == nil {
		logs = []model.FetchLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// writeJSON 统一 JSON 输出。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Warnf("写响应失败：%v", err)
	}
}
