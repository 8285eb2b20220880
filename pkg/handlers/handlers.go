package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/duty-planner-go/pkg/auth"
	"github.com/arnavshah/duty-planner-go/pkg/catalog"
	"github.com/arnavshah/duty-planner-go/pkg/database"
	"github.com/arnavshah/duty-planner-go/pkg/llm"
	"github.com/arnavshah/duty-planner-go/pkg/models"
	"github.com/arnavshah/duty-planner-go/pkg/planner"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB        *gorm.DB
	Catalog   *catalog.Catalog // default slot catalog for slot-less requests
	AIClient  llm.Client       // nil disables the AI path
	AITimeout time.Duration    // zero uses planner.DefaultAITimeout
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for planner routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// runPlan executes a full planning run for the given input. A malformed
// catalog is the caller's configuration error and surfaces as a 400; every
// runtime failure downstream degrades inside the planner instead.
func (h *Handler) runPlan(c *gin.Context, input *models.PlanInput) (*models.PlanResult, bool) {
	cat, err := h.planCatalog(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	day := input.Day
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	workers := models.Available(input.Workers, input.Absences, day)

	opts := []planner.Option{planner.WithTimeout(h.AITimeout)}
	if h.AIClient != nil {
		opts = append(opts, planner.WithClient(h.AIClient))
	}
	result := planner.New(cat, opts...).Generate(c.Request.Context(), day, workers)

	h.storePlan(result)
	h.RecordUsage(c, len(input.Slots), len(input.Workers))
	return result, true
}

// planCatalog resolves the catalog for a planning request. Requests that
// carry their own slots win; a slot-less request falls back to the catalog
// the server loaded at startup, when one is configured.
func (h *Handler) planCatalog(input *models.PlanInput) (*catalog.Catalog, error) {
	if len(input.Slots) == 0 && h.Catalog != nil {
		return h.Catalog, nil
	}
	return catalog.New(input.Slots)
}

// storePlan persists the envelope for later review; failures are logged by
// gorm and never block the response.
func (h *Handler) storePlan(result *models.PlanResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	h.DB.Create(&database.PlanRecord{
		ID:      result.ID,
		Day:     result.Day,
		Source:  result.Source,
		Payload: string(payload),
	})
}

// PlanJSON handles the JSON-based planning request
func (h *Handler) PlanJSON(c *gin.Context) {
	var input models.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, ok := h.runPlan(c, &input)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// PlanCSV runs the same planning request but returns assignment rows as CSV
func (h *Handler) PlanCSV(c *gin.Context) {
	var input models.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, ok := h.runPlan(c, &input)
	if !ok {
		return
	}

	names := make(map[string]string, len(input.Workers))
	for _, w := range input.Workers {
		names[w.ID] = w.Name
	}

	var outCSV strings.Builder
	writer := csv.NewWriter(&outCSV)
	writer.Write([]string{"day", "slot_id", "segment_id", "worker_id", "worker_name", "role", "source"})
	for _, a := range result.Assignments {
		writer.Write([]string{
			result.Day,
			a.SlotID,
			a.SegmentID,
			a.WorkerID,
			names[a.WorkerID],
			a.Role,
			result.Source,
		})
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{"csv": outCSV.String(), "notes": result.Notes})
}

// GetPlan returns the most recently stored plan for a day
func (h *Handler) GetPlan(c *gin.Context) {
	day := c.Param("day")

	var record database.PlanRecord
	if err := h.DB.Where("day = ?", day).Order("created_at desc").First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No plan stored for " + day})
		return
	}

	var result models.PlanResult
	if err := json.Unmarshal([]byte(record.Payload), &result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored plan is unreadable"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, slotCount, workerCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_slots":   gorm.Expr("total_slots + ?", slotCount),
			"total_workers": gorm.Expr("total_workers + ?", workerCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:        apiKey.ID,
		Date:         today,
		RequestCount: 1,
		TotalSlots:   slotCount,
		TotalWorkers: workerCount,
	})
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	// Generate key using HMAC
	key := auth.GenerateHMACKey(req.Name)

	// Create preview (e.g., abc...1234)
	preview := "****"
	if len(key) > 8 {
		preview = key[:3] + "..." + key[len(key)-4:]
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview,
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
