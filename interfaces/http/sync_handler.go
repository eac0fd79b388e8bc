package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-hub/infrastructure/logger"
	"social-hub/usecase"
)

type ISyncHandler interface {
	SyncAccountAnalytics(c *gin.Context)
	SyncWorkspaceAnalytics(c *gin.Context)
	SyncPostComments(c *gin.Context)
	SyncWorkspaceCatalog(c *gin.Context)
}

type SyncHandler struct {
	syncUsecase usecase.ISyncUsecase
}

func NewSyncHandler(syncUsecase usecase.ISyncUsecase) ISyncHandler {
	return &SyncHandler{syncUsecase: syncUsecase}
}

func (handler *SyncHandler) SyncAccountAnalytics(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId must be numeric"})
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	result, err := handler.syncUsecase.SyncAccountAnalytics(c.Request.Context(), accountID, days)
	if err != nil {
		logger.GetLogger().
			WithField("accountId", accountID).
			WithField("error", err).
			Error("Error while syncing account analytics")
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (handler *SyncHandler) SyncWorkspaceAnalytics(c *gin.Context) {
	workspaceID := c.Param("workspaceId")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	results, err := handler.syncUsecase.SyncWorkspaceAnalytics(c.Request.Context(), workspaceID, days)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

func (handler *SyncHandler) SyncPostComments(c *gin.Context) {
	postID := c.Param("postId")
	accountID, err := strconv.ParseInt(c.Query("account_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id must be numeric"})
		return
	}

	result, err := handler.syncUsecase.SyncPostComments(c.Request.Context(), accountID, postID)
	if err != nil {
		logger.GetLogger().
			WithField("postId", postID).
			WithField("error", err).
			Error("Error while syncing post comments")
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (handler *SyncHandler) SyncWorkspaceCatalog(c *gin.Context) {
	workspaceID := c.Param("workspaceId")
	platform := c.Param("platform")

	result, err := handler.syncUsecase.SyncWorkspaceCatalog(c.Request.Context(), workspaceID, platform)
	if err != nil {
		logger.GetLogger().
			WithField("workspaceId", workspaceID).
			WithField("platform", platform).
			WithField("error", err).
			Error("Error while syncing catalog")
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
