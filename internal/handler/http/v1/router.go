package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты приложения
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	// Маршруты конечного пользователя
	api := router.Group("/api/v1")
	{
		api.POST("/login", h.login)
		api.POST("/logout", h.sessionAuth(), h.logout)
		api.GET("/auth-status", h.authStatus)
		api.POST("/submit", h.sessionAuth(), h.submit)
		api.POST("/profile", h.sessionAuth(), h.updateProfile)
		api.GET("/system/health", h.healthCheck)
	}

	// Консоль оператора: basic auth -> лимитер по IP -> список разрешенных IP
	admin := router.Group("", h.adminAuth())
	{
		admin.GET("/supersecretadmin", h.adminConsole)
		admin.GET("/admin/api/requests", h.listRequests)
		admin.GET("/admin/api/users", h.listUsers)
	}

	// Каталог типов открыт без аутентификации
	router.GET("/admin/api/types", h.listTypes)
}
