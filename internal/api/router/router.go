package router

import (
	"ats-score-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app/server"
)

// RegisterRoutes 注册页面, API 和指标路由
func RegisterRoutes(h *server.Hertz, scoreHandler *handler.ScoreHandler) {
	h.SetHTMLTemplate(scoreHandler.Templates())
	h.Use(handler.RequestID(), handler.AccessLog())

	if m := scoreHandler.Metrics(); m != nil {
		h.Use(m.Middleware())
		h.GET("/metrics", m.Handler())
	}

	h.GET("/", scoreHandler.HandleIndex)
	h.POST("/score", scoreHandler.HandleScoreForm)

	api := h.Group("/api/v1")
	api.POST("/score", scoreHandler.HandleScoreAPI)
	api.GET("/skills", scoreHandler.HandleSkills)
	api.GET("/health", scoreHandler.HandleHealth)
}
