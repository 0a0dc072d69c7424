package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	emailDelivery "onebox-backend/internal/email/delivery"
	emailUsecase "onebox-backend/internal/email/usecase"
)

func SetupRoutes(r *gin.Engine, emailUc emailUsecase.EmailUsecase, status emailDelivery.StatusProvider) {
	emailHandler := emailDelivery.NewEmailHandler(emailUc, status)

	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Email routes
		emails := api.Group("/emails")
		{
			emails.GET("/search", emailHandler.SearchEmails)
			emails.GET("/status/connections", emailHandler.GetConnectionStatus)
			emails.GET("/stats/overview", emailHandler.GetStats)
			emails.POST("/context/add", emailHandler.AddContext)
			emails.GET("/:id", emailHandler.GetEmailByID)
			emails.PATCH("/:id/category", emailHandler.UpdateCategory)
			emails.POST("/:id/reply", emailHandler.GenerateReply)
		}
	}
}
