package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// MachineResponse represents the API response for a single machine.
type MachineResponse struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Status       string `json:"status"`
	Building     string `json:"building"`
	BuildingUUID string `json:"building_uuid"`
	SlotCount    int    `json:"slot_count"`
	SlotTemplate string `json:"slot_template"`
	ImageURL     string `json:"image_url,omitempty"`
}

func machineResponse(m *model.Machine) MachineResponse {
	return MachineResponse{
		UUID:         m.UUID,
		Name:         m.Name,
		Code:         m.Code,
		Status:       m.Status,
		Building:     m.Building.Name,
		BuildingUUID: m.Building.UUID,
		SlotCount:    m.SlotCount,
		SlotTemplate: m.SlotTemplate,
		ImageURL:     m.ImageURL,
	}
}

// ListMachines handles GET /api/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

type createMachineRequest struct {
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code" binding:"required"`
	BuildingUUID string `json:"building_uuid" binding:"required"`
	Status       string `json:"status"`
	SlotCount    int    `json:"slot_count" binding:"required,min=1"`
	SlotTemplate string `json:"slot_template" binding:"required"`
	ImageURL     string `json:"image_url"`
}

// CreateMachine handles POST /api/admin/machines. The slot template is
// validated before anything touches the database.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine := model.Machine{
		Name:         req.Name,
		Code:         req.Code,
		Status:       req.Status,
		SlotCount:    req.SlotCount,
		SlotTemplate: req.SlotTemplate,
		ImageURL:     req.ImageURL,
	}
	if err := h.store.CreateMachine(c.Request.Context(), &machine, req.BuildingUUID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, machineResponse(&machine))
}

type updateMachineRequest struct {
	Name         *string `json:"name"`
	Code         *string `json:"code"`
	Status       *string `json:"status"`
	BuildingUUID *string `json:"building_uuid"`
	SlotCount    *int    `json:"slot_count"`
	SlotTemplate *string `json:"slot_template"`
	ImageURL     *string `json:"image_url"`
}

// UpdateMachine handles PATCH /api/admin/machines/{machine_uuid}.
func (h *Handler) UpdateMachine(c *gin.Context) {
	var req updateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.UpdateMachine(c.Request.Context(), c.Param("machine_uuid"), store.MachineUpdate{
		Name:         req.Name,
		Code:         req.Code,
		Status:       req.Status,
		BuildingUUID: req.BuildingUUID,
		SlotCount:    req.SlotCount,
		SlotTemplate: req.SlotTemplate,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machineResponse(machine))
}

// DeleteMachine handles DELETE /api/admin/machines/{machine_uuid}. Machines
// with bookings on record refuse to go; retire them via status instead.
func (h *Handler) DeleteMachine(c *gin.Context) {
	if err := h.store.DeleteMachine(c.Request.Context(), c.Param("machine_uuid")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
