package router

import (
	"github.com/X-spec7/circle-integration-backend-sub000/internal/config"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/handler"
	"github.com/X-spec7/circle-integration-backend-sub000/internal/sync"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, engine *sync.Engine, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "circle-integration-backend",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 项目相关路由
		projectHandler := handler.NewProjectHandler(db)
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/investments", projectHandler.GetProjectInvestments)
		}

		// 投资人相关路由
		investmentHandler := handler.NewInvestmentHandler(db)
		investors := v1.Group("/investors")
		{
			investors.GET("/:id/investments", investmentHandler.GetInvestorInvestments)
		}

		// 对账状态路由
		syncHandler := handler.NewSyncHandler(db, engine)
		v1.GET("/sync/status", syncHandler.GetStatus)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
