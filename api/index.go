package handler

import (
	"log"
	"net/http"
	"os"

	"github.com/arnavshah/duty-planner-go/pkg/auth"
	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/database"
	"github.com/arnavshah/duty-planner-go/pkg/handlers"
	"github.com/arnavshah/duty-planner-go/pkg/llm"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Initialize DB
	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	h := &handlers.Handler{DB: db}
	if cfg := llm.ConfigFromEnv(); cfg.APIKey != "" {
		h.AIClient = llm.NewHTTPClient(cfg)
	}
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		cat, err := catalog.Load(path)
		if err != nil {
			// Serverless cold starts should come up; requests must then
			// carry their own slots.
			log.Printf("could not load slot catalog: %v", err)
		} else {
			h.Catalog = cat
		}
	}

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Duty Planner API (Vercel)",
			"version": "1.0.0",
		})
	})

	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/plan", h.PlanJSON)
		api.POST("/plan/csv", h.PlanCSV)
		api.POST("/validate", h.ValidateInput)
		api.GET("/plans/:day", h.GetPlan)
		api.GET("/usage", h.GetMyUsage)
	}
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
