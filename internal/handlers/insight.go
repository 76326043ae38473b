package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mentora-app/mentora-backend/internal/requestdata"
	"github.com/mentora-app/mentora-backend/internal/services"
)

type InsightHandler struct {
	insightService services.InsightService
}

func NewInsightHandler(insightService services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (ih *InsightHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	insights := ih.insightService.Generate(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (ih *InsightHandler) ListActive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	insights, err := ih.insightService.FetchActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (ih *InsightHandler) RegenerationStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	status, err := ih.insightService.ShouldRegenerate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check regeneration status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (ih *InsightHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	insightID, ok := pathInsightID(c)
	if !ok {
		return
	}
	writeMutationResult(c, ih.insightService.SaveToContext(c.Request.Context(), insightID, userID))
}

func (ih *InsightHandler) Dismiss(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	insightID, ok := pathInsightID(c)
	if !ok {
		return
	}
	writeMutationResult(c, ih.insightService.Dismiss(c.Request.Context(), insightID, userID))
}

func (ih *InsightHandler) React(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	insightID, ok := pathInsightID(c)
	if !ok {
		return
	}
	var req struct {
		Reaction string `json:"reaction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	writeMutationResult(c, ih.insightService.React(c.Request.Context(), insightID, req.Reaction, userID))
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathInsightID(c *gin.Context) (uuid.UUID, bool) {
	insightID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid insight id"})
		return uuid.Nil, false
	}
	return insightID, true
}

func writeMutationResult(c *gin.Context, result services.MutationResult) {
	if !result.Success {
		status := http.StatusBadRequest
		if result.Error == "insight not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
