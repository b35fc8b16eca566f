package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/chis-api/internal/service"
	appErrors "github.com/noah-isme/chis-api/pkg/errors"
	"github.com/noah-isme/chis-api/pkg/response"
)

// ClientHandler exposes client endpoints.
type ClientHandler struct {
	clients  *service.ClientService
	profiles *service.ProfileService
}

// NewClientHandler constructs ClientHandler.
func NewClientHandler(clients *service.ClientService, profiles *service.ProfileService) *ClientHandler {
	return &ClientHandler{clients: clients, profiles: profiles}
}

// List returns all clients sorted by name.
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients)
}

// Search matches clients by name substring or exact id.
func (h *ClientHandler) Search(c *gin.Context) {
	clients, err := h.clients.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients)
}

// Get returns a single client.
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// Profile returns the client together with its enrollments.
func (h *ClientHandler) Profile(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.profiles.ClientProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Programs returns the programs the client is enrolled in.
func (h *ClientHandler) Programs(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	programs, err := h.profiles.ClientPrograms(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs)
}

// Create registers a new client.
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	client, err := h.clients.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Update modifies an existing client record.
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	client, err := h.clients.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client)
}

// Delete removes a client and, through the store, its enrollments.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
