package http

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Health(c *gin.Context)
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) IHealthHandler {
	return &HealthHandler{db: db}
}

func (handler *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	if handler.db == nil {
		dbStatus = "unavailable"
	} else if err := handler.db.PingContext(c.Request.Context()); err != nil {
		dbStatus = "unreachable"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": dbStatus})
}
