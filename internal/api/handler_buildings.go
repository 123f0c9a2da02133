package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// BuildingResponse represents the API response for a single building.
type BuildingResponse struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func buildingResponse(b *model.Building) BuildingResponse {
	return BuildingResponse{UUID: b.UUID, Name: b.Name, Code: b.Code}
}

// ListBuildings handles GET /api/buildings. Machine counts ride along so the
// frontend can render the building picker in one request.
func (h *Handler) ListBuildings(c *gin.Context) {
	buildings, err := h.store.ListBuildings(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildings)
}

type createBuildingRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// CreateBuilding handles POST /api/admin/buildings.
func (h *Handler) CreateBuilding(c *gin.Context) {
	var req createBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	building := model.Building{Name: req.Name, Code: req.Code}
	if err := h.store.CreateBuilding(c.Request.Context(), &building); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildingResponse(&building))
}

type updateBuildingRequest struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
}

// UpdateBuilding handles PATCH /api/admin/buildings/{building_uuid}.
func (h *Handler) UpdateBuilding(c *gin.Context) {
	var req updateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	building, err := h.store.UpdateBuilding(c.Request.Context(), c.Param("building_uuid"), store.BuildingUpdate{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildingResponse(building))
}
