package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"blognest/handlers"
	"blognest/middleware"
)

// Handlers carries everything the router mounts.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Posts  *handlers.PostHandler
	Upload *handlers.UploadHandler
}

func Setup(h Handlers, clientOrigin, jwtSecret string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientOrigin, "http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimit(30, time.Minute))
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", middleware.JWTAuth(jwtSecret), h.Auth.Me)

	// Reads are public, everything that mutates sits behind the gate.
	router.GET("/api/posts", h.Posts.List)
	router.GET("/api/posts/:id", h.Posts.Get)

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(jwtSecret))
	protected.POST("/posts", h.Posts.Create)
	protected.PUT("/posts/:id", h.Posts.Update)
	protected.DELETE("/posts/:id", h.Posts.Delete)
	protected.POST("/posts/:id/comments", h.Posts.AddComment)
	protected.PUT("/posts/:id/like", h.Posts.ToggleLike)
	protected.POST("/upload", h.Upload.Upload)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"message": "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return router
}
