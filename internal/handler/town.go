package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ville-ideale-api/internal/models"

	"github.com/gin-gonic/gin"
)

// TownHandler handles town score requests
type TownHandler struct {
	service TownService
}

// TownService interface for dependency injection
type TownService interface {
	GetTownInfo(ctx context.Context, name, code string) (*models.TownRecord, bool)
}

// NewTownHandler creates a new town handler
func NewTownHandler(svc TownService) *TownHandler {
	return &TownHandler{service: svc}
}

// GetScore godoc
// @Summary      Get score and information for a specific town
// @Description  Scrapes ville-ideale.fr for the livability score and postal code of a town.
// @Tags         score
// @Produce      json
// @Param        town  path      string  true  "Town name and COG code joined by an underscore"  example(antony_92002)
// @Success      200   {object}  models.TownResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /score/{town} [get]
func (h *TownHandler) GetScore(c *gin.Context) {
	name, code, ok := splitTownParam(c.Param("town"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected path of the form /score/{town_name}_{cog_code}"})
		return
	}

	town, found := h.service.GetTownInfo(c.Request.Context(), name, code)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Unable to find information for: %s (%s)", name, code)})
		return
	}

	c.JSON(http.StatusOK, models.NewTownResponse(town))
}

// splitTownParam splits "{town}_{code}" at the last underscore, since town
// names may themselves contain underscores.
func splitTownParam(param string) (name, code string, ok bool) {
	i := strings.LastIndex(param, "_")
	if i <= 0 || i == len(param)-1 {
		return "", "", false
	}
	return param[:i], param[i+1:], true
}
