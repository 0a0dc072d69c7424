package api

import (
	"github.com/gin-gonic/gin"

	emailDelivery "onebox-backend/internal/email/delivery"
	emailUsecase "onebox-backend/internal/email/usecase"
)

type Handler struct {
	emailUsecase emailUsecase.EmailUsecase
	status       emailDelivery.StatusProvider
}

func NewHandler(emailUc emailUsecase.EmailUsecase, status emailDelivery.StatusProvider) *Handler {
	return &Handler{
		emailUsecase: emailUc,
		status:       status,
	}
}

func (h *Handler) Start(addr string) error {
	return h.engine().Run(addr)
}

// engine builds the configured gin engine. Mode is set before the engine
// and its middleware are constructed.
func (h *Handler) engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.emailUsecase, h.status)

	return r
}
