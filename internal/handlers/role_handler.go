package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashflow/internal/services"
)

// RoleHandler handles role management requests.
type RoleHandler struct {
	roleService  services.RoleServicer
	auditService services.AuditServicer
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roleService services.RoleServicer, auditService services.AuditServicer) *RoleHandler {
	return &RoleHandler{roleService: roleService, auditService: auditService}
}

// RoleRequest represents the request payload for creating or updating a role.
// On update, omitted permissions leave the role's permissions as they are.
type RoleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Permissions *[]string `json:"permissions" binding:"omitempty,dive,permission_name"`
}

func (r RoleRequest) input() services.RoleInput {
	return services.RoleInput{Name: r.Name, Permissions: r.Permissions}
}

// CreateRole handles the creation of a new role
// @Summary     Create a role
// @Description Create a role and grant it the named permissions
// @Tags        roles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RoleRequest true "Role details"
// @Success     201 {object} models.Role "Role created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Role name taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.roleService.CreateRole(c.Request.Context(), actor, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CREATE_ROLE", "role", res.Entity.ID,
		map[string]interface{}{"name": res.Entity.Name, "permissions": res.Entity.PermissionNames()})

	respondMutation(c, http.StatusCreated, "role", res)
}

// ListRoles returns a page of roles
// @Summary     List roles
// @Tags        roles
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Role] "Paginated roles"
// @Router      /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.roleService.ListRoles(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRole returns a single role with its permissions
// @Summary     Get role by ID
// @Tags        roles
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Role ID"
// @Success     200 {object} models.Role "Role details"
// @Failure     404 {object} ErrorResponse "Role not found"
// @Router      /roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	role, err := h.roleService.GetRoleByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": role})
}

// UpdateRole handles updating a role
// @Summary     Update role
// @Description Rename a role; given permissions become its exact permission set
// @Tags        roles
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string      true "Role ID"
// @Param       request body RoleRequest true "Fields to update"
// @Success     200 {object} models.Role "Updated role"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Role not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
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

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.roleService.UpdateRole(c.Request.Context(), actor, id, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_ROLE", "role", id,
		map[string]interface{}{"name": res.Entity.Name, "permissions": res.Entity.PermissionNames()})

	respondMutation(c, http.StatusOK, "role", res)
}

// DeleteRole handles deleting a role
// @Summary     Delete role
// @Tags        roles
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Role ID"
// @Success     200 {object} MessageResponse "Role deleted"
// @Failure     404 {object} ErrorResponse "Role not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
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

	res, err := h.roleService.DeleteRole(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "DELETE_ROLE", "role", id, nil)

	respondDeleted(c, res)
}
