package service

import (
	"bytes"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/response"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

// SearchService 搜索 REST 服务
type SearchService struct {
	uc       *biz.SearchUseCase
	stats    *RequestStats
	settings Settings
	name     string
	started  time.Time
	markdown goldmark.Markdown
	logger   *logger.Logger
}

// NewSearchService 创建搜索服务
func NewSearchService(uc *biz.SearchUseCase, stats *RequestStats, settings Settings, name string, log *logger.Logger) *SearchService {
	settings.Provider = uc.ProviderID()
	return &SearchService{
		uc:       uc,
		stats:    stats,
		settings: settings,
		name:     name,
		started:  time.Now(),
		markdown: goldmark.New(),
		logger:   log.Named("search.http"),
	}
}

// RegisterRoutes 注册路由, searchMiddleware 仅作用于 /search
func (s *SearchService) RegisterRoutes(r gin.IRouter, searchMiddleware ...gin.HandlerFunc) {
	r.POST("/search", append(searchMiddleware, s.Search)...)
	r.GET("/health", s.Health)
	r.GET("/ready", s.Ready)
	r.GET("/metrics", s.Metrics)
	r.POST("/cache/clear", s.ClearCache)
}

// Search 执行搜索, ?format=html 时附带渲染后的 HTML 摘要
func (s *SearchService) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrInvalidParams, err.Error())
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		response.ErrorWithCode(c, apperrors.ErrSearchQueryRequired)
		return
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		response.ErrorWithCode(c, apperrors.ErrSearchQueryTooLong)
		return
	}

	ctx := c.Request.Context()
	out, err := s.uc.Search(ctx, biz.Params{
		Query:      query,
		Count:      biz.EffectiveCount(false, req.MaxResults),
		Region:     biz.NormalizeRegion(""),
		SafeSearch: biz.NormalizeSafeSearch(""),
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("search request failed", zap.String("query", query), zap.Error(err))
		response.HandleError(c, err)
		return
	}

	resp := SearchResponse{
		Results:   out.Results,
		Query:     out.Query,
		Count:     out.Count,
		Cached:    out.Cached,
		RequestID: logger.GetRequestID(ctx),
	}
	if c.Query("format") == "html" {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(out.Text), &buf); err != nil {
			s.logger.WithContext(ctx).Warn("failed to render summary", zap.Error(err))
		} else {
			resp.HTML = buf.String()
		}
	}
	response.Success(c, resp)
}

// Health 存活检查
func (s *SearchService) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: float64(time.Now().UnixMilli()) / 1000,
		Service:   s.name,
	})
}

// Ready 就绪检查, 上游不可达时返回 503
func (s *SearchService) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	provider := s.settings.Provider

	if err := s.uc.Probe(ctx); err != nil {
		s.logger.WithContext(ctx).Error("readiness check failed", zap.String("provider", provider), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "not ready",
			Checks: map[string]string{provider: "unreachable"},
			Detail: "Service not ready: unable to reach " + provider,
		})
		return
	}
	c.JSON(http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: map[string]string{provider: "ok"},
	})
}

// Metrics 运行指标
func (s *SearchService) Metrics(c *gin.Context) {
	response.Success(c, MetricsResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Requests:      s.stats.Requests(),
		Errors:        s.stats.Errors(),
		Search:        s.uc.Counters(),
		Cache:         s.uc.CacheStats(c.Request.Context()),
		Settings:      s.settings,
	})
}

// ClearCache 清空搜索缓存
func (s *SearchService) ClearCache(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.uc.ClearCache(ctx); err != nil {
		response.HandleError(c, err)
		return
	}
	s.logger.WithContext(ctx).Info("cache cleared by administrator", zap.String("ip", c.ClientIP()))
	response.Success(c, ClearCacheResponse{
		Status:  "success",
		Message: "All cached results have been cleared",
	})
}
