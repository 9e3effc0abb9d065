package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashflow/internal/services"
)

// UserHandler handles user management requests.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// CreateUserRequest represents the request payload for creating a user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,max=100"`
}

// UpdateUserRequest represents the request payload for updating a user.
// An absent or empty password keeps the current one.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password string  `json:"password" binding:"omitempty,min=8,max=128"`
	Role     *string `json:"role" binding:"omitempty,min=1,max=100"`
}

// CreateUser handles the creation of a new user
// @Summary     Create a user
// @Description Create a user with a single role
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "User details"
// @Success     201 {object} models.User "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Email already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.userService.CreateUser(c.Request.Context(), actor, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CREATE_USER", "user", res.Entity.ID,
		map[string]interface{}{"email": res.Entity.Email, "role": req.Role})

	respondMutation(c, http.StatusCreated, "user", res)
}

// ListUsers returns a page of users
// @Summary     List users
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.User] "Paginated users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUser returns a single user
// @Summary     Get user by ID
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} models.User "User details"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser handles updating a user
// @Summary     Update user
// @Description Update a user. A role replaces every role the user had; an empty password keeps the current one.
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} models.User "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     409 {object} ErrorResponse "Email already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
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

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.UpdateUserInput{Name: req.Name, Email: req.Email, Role: req.Role}
	if req.Password != "" {
		in.Password = &req.Password
	}

	res, err := h.userService.UpdateUser(c.Request.Context(), actor, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"password_changed": in.Password != nil}
	if req.Role != nil {
		changes["role"] = *req.Role
	}
	h.auditService.Log(actor, "UPDATE_USER", "user", id, changes)

	respondMutation(c, http.StatusOK, "user", res)
}

// DeleteUser handles deleting a user
// @Summary     Delete user
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "User ID"
// @Success     200 {object} MessageResponse "User deleted"
// @Failure     400 {object} ErrorResponse "Invalid user ID"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
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

	res, err := h.userService.DeleteUser(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "DELETE_USER", "user", id, nil)

	respondDeleted(c, res)
}
