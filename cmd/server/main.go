package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/arnavshah/duty-planner-go/pkg/auth"
	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/database"
	"github.com/arnavshah/duty-planner-go/pkg/handlers"
	"github.com/arnavshah/duty-planner-go/pkg/llm"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	h := &handlers.Handler{
		DB:        db,
		Catalog:   loadCatalog(),
		AIClient:  buildAIClient(),
		AITimeout: aiTimeout(),
	}

	r := gin.Default()

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Duty Planner API",
			"version": "1.0.0",
		})
	})

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Planner Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/plan", h.PlanJSON)
		api.POST("/plan/csv", h.PlanCSV)
		api.POST("/validate", h.ValidateInput)
		api.GET("/plans/:day", h.GetPlan)
		api.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

// loadCatalog reads the default slot catalog when CATALOG_PATH is set.
// A broken catalog file is a configuration error worth failing startup over.
func loadCatalog() *catalog.Catalog {
	path := os.Getenv("CATALOG_PATH")
	if path == "" {
		return nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		log.Fatalf("could not load slot catalog: %v", err)
	}
	log.Printf("Loaded default slot catalog from %s", path)
	return cat
}

// buildAIClient wires the proposal service from the environment. Without an
// API key the server runs deterministic-only, which is the dev default.
func buildAIClient() llm.Client {
	cfg := llm.ConfigFromEnv()
	if cfg.APIKey == "" {
		log.Printf("OPENAI_API_KEY not set, AI proposal path disabled")
		return nil
	}
	return llm.NewHTTPClient(cfg)
}

func aiTimeout() time.Duration {
	if v := os.Getenv("PLANNER_AI_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0 // planner default
}
