package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/supabase"
)

type LearningHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewLearningHandler(dbClient *supabase.DatabaseClient) *LearningHandler {
	return &LearningHandler{dbClient: dbClient}
}

// ListResources godoc
// @Summary     List learning resources grouped by category
// @Description Categories are ordered alphabetically; resources within one newest first.
// @Tags        learning
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.LearningCategoryResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /learning [get]
func (h *LearningHandler) ListResources(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	resources, err := h.dbClient.ListLearningResources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list resources", Message: err.Error()})
		return
	}

	var order []string
	byCategory := make(map[string][]models.LearningResourceResponse)
	for _, r := range resources {
		if _, seen := byCategory[r.Category]; !seen {
			order = append(order, r.Category)
		}
		byCategory[r.Category] = append(byCategory[r.Category], models.LearningResourceResponse{
			ID:          r.ID.String(),
			Title:       r.Title,
			Description: r.Description.String,
			CreatedAt:   r.CreatedAt,
		})
	}

	out := make([]models.LearningCategoryResponse, 0, len(order))
	for _, category := range order {
		out = append(out, models.LearningCategoryResponse{
			Category:  category,
			Count:     len(byCategory[category]),
			Resources: byCategory[category],
		})
	}
	c.JSON(http.StatusOK, out)
}
