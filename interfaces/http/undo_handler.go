package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-hub/usecase"
)

type IUndoHandler interface {
	List(c *gin.Context)
	Undo(c *gin.Context)
	Clear(c *gin.Context)
}

type UndoHandler struct {
	ledger usecase.IUndoLedger
}

func NewUndoHandler(ledger usecase.IUndoLedger) IUndoHandler {
	return &UndoHandler{ledger: ledger}
}

func (handler *UndoHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": handler.ledger.List()})
}

func (handler *UndoHandler) Undo(c *gin.Context) {
	if err := handler.ledger.Undo(c.Param("id")); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "undone"})
}

func (handler *UndoHandler) Clear(c *gin.Context) {
	if err := handler.ledger.Clear(c.Param("id")); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
