package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-hub/domain/errs"
	"social-hub/infrastructure/logger"
	"social-hub/usecase"
)

type IAccountHandler interface {
	List(c *gin.Context)
	RegisterCredential(c *gin.Context)
	Connect(c *gin.Context)
	Callback(c *gin.Context)
	Disconnect(c *gin.Context)
	Activity(c *gin.Context)
}

type AccountHandler struct {
	oauthUsecase usecase.IOAuthUsecase
	undoLedger   usecase.IUndoLedger
}

func NewAccountHandler(oauthUsecase usecase.IOAuthUsecase, undoLedger usecase.IUndoLedger) IAccountHandler {
	return &AccountHandler{oauthUsecase: oauthUsecase, undoLedger: undoLedger}
}

// statusFromError maps the error taxonomy onto HTTP codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrStateInvalid), errors.Is(err, errs.ErrStateExpired):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrAlreadyInProgress):
		return http.StatusConflict
	case errors.Is(err, errs.ErrTransientPlatform):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (handler *AccountHandler) List(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id is required"})
		return
	}
	accounts, err := handler.oauthUsecase.ListAccounts(c.Request.Context(), workspaceID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing accounts")
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

type reqRegisterCredential struct {
	WorkspaceID  string `json:"workspaceId" binding:"required"`
	ClientID     string `json:"clientId" binding:"required"`
	ClientSecret string `json:"clientSecret" binding:"required"`
}

func (handler *AccountHandler) RegisterCredential(c *gin.Context) {
	var req reqRegisterCredential
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	platform := c.Param("platform")
	err := handler.oauthUsecase.RegisterCredential(c.Request.Context(), req.WorkspaceID, platform, req.ClientID, req.ClientSecret)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

func (handler *AccountHandler) Connect(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	platform := c.Param("platform")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id is required"})
		return
	}
	initiation, err := handler.oauthUsecase.Initiate(c.Request.Context(), workspaceID, platform)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while initiating OAuth flow")
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, initiation)
}

// Callback receives the provider redirect. It carries only code and state;
// the workspace binding lives inside the state token.
func (handler *AccountHandler) Callback(c *gin.Context) {
	platform := c.Param("platform")
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and state are required"})
		return
	}
	account, err := handler.oauthUsecase.CompleteCallback(c.Request.Context(), platform, code, state)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while completing OAuth callback")
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": account})
}

// Disconnect defers the revocation through the undo ledger so the user has a
// short window to cancel it.
func (handler *AccountHandler) Disconnect(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	accountID, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountId must be numeric"})
		return
	}

	undoID := handler.undoLedger.Push(usecase.UndoAction{
		Kind: "disconnect_account",
		Execute: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return handler.oauthUsecase.Disconnect(ctx, workspaceID, accountID)
		},
	}, 0)

	c.JSON(http.StatusAccepted, gin.H{"undoId": undoID})
}

func (handler *AccountHandler) Activity(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := handler.oauthUsecase.ListActivity(c.Request.Context(), workspaceID, limit)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
