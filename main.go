package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"blognest/config"
	"blognest/database"
	"blognest/handlers"
	"blognest/routes"
	"blognest/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	log.Println("Connecting to MongoDB...")

	var db *database.DB
	for i := 1; i <= 3; i++ {
		db, err = database.Connect(cfg.MongoURI, cfg.DBName)
		if err == nil {
			break
		}
		log.Printf("MongoDB connection attempt %d failed: %v", i, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			log.Printf("MongoDB disconnect: %v", err)
		}
	}()

	log.Println("MongoDB connected")

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	users := store.NewMongoUserStore(db.Users)
	posts := store.NewMongoPostStore(db.Posts)

	router := routes.Setup(routes.Handlers{
		Auth:   &handlers.AuthHandler{Users: users, JWTSecret: cfg.JWTSecret},
		Posts:  &handlers.PostHandler{Store: posts, Users: users},
		Upload: &handlers.UploadHandler{CloudinaryURL: cfg.CloudinaryURL},
	}, cfg.ClientOrigin, cfg.JWTSecret)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped")
}
