package api

import (
	"github.com/gin-gonic/gin"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/processor"
)

// NewRouter builds the HTTP surface in the given gin mode. Local sources in
// requests must live under sourceRoot.
func NewRouter(mode string, proc processor.Processor, sourceRoot string, log logger.Logger) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	h := NewBatchHandler(proc, sourceRoot)
	r.POST("/batches", h.Create)
	r.GET("/styles", h.Styles)

	return r
}
