package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root godoc
// @Summary  API usage information
// @Tags     meta
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Ville Idéale API",
		"usage":   "GET /score/{town_name}_{cog_code}",
		"example": "GET /score/antony_92002",
	})
}

// Health godoc
// @Summary  Liveness probe
// @Tags     meta
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Register mounts the API routes on r.
func Register(r gin.IRouter, towns *TownHandler) {
	r.GET("/", Root)
	r.GET("/health", Health)
	r.GET("/score/:town", towns.GetScore)
}
