package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashflow/internal/services"
)

// PermissionHandler handles permission management requests.
type PermissionHandler struct {
	permissionService services.PermissionServicer
	auditService      services.AuditServicer
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(permissionService services.PermissionServicer, auditService services.AuditServicer) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService, auditService: auditService}
}

// PermissionRequest represents the request payload for a permission
type PermissionRequest struct {
	Name string `json:"name" binding:"required,max=100,permission_name"`
}

// CreatePermission handles the creation of a new permission
// @Summary     Create a permission
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PermissionRequest true "Permission name, e.g. view-wallet"
// @Success     201 {object} models.Permission "Permission created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Permission name taken"
// @Router      /permissions [post]
func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.permissionService.CreatePermission(c.Request.Context(), actor, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CREATE_PERMISSION", "permission", res.Entity.ID, map[string]interface{}{"name": req.Name})

	respondMutation(c, http.StatusCreated, "permission", res)
}

// ListPermissions returns a page of permissions
// @Summary     List permissions
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Permission] "Paginated permissions"
// @Router      /permissions [get]
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.permissionService.ListPermissions(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPermission returns a single permission
// @Summary     Get permission by ID
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Permission ID"
// @Success     200 {object} models.Permission "Permission details"
// @Failure     404 {object} ErrorResponse "Permission not found"
// @Router      /permissions/{id} [get]
func (h *PermissionHandler) GetPermission(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	perm, err := h.permissionService.GetPermissionByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"permission": perm})
}

// UpdatePermission handles renaming a permission
// @Summary     Update permission
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Permission ID"
// @Param       request body PermissionRequest true "New name"
// @Success     200 {object} models.Permission "Updated permission"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Permission not found"
// @Router      /permissions/{id} [put]
func (h *PermissionHandler) UpdatePermission(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.permissionService.UpdatePermission(c.Request.Context(), actor, id, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_PERMISSION", "permission", id, map[string]interface{}{"name": req.Name})

	respondMutation(c, http.StatusOK, "permission", res)
}

// DeletePermission handles deleting a permission
// @Summary     Delete permission
// @Description Delete a permission and revoke it from every role
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Permission ID"
// @Success     200 {object} MessageResponse "Permission deleted"
// @Failure     404 {object} ErrorResponse "Permission not found"
// @Router      /permissions/{id} [delete]
func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	res, err := h.permissionService.DeletePermission(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "DELETE_PERMISSION", "permission", id, nil)

	respondDeleted(c, res)
}
