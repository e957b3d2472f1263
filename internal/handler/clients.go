package handler

import (
	"fmt"
	"net/http"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClientsHandler struct{ svc service.ClientService }

func NewClientsHandler(svc service.ClientService) *ClientsHandler {
	return &ClientsHandler{svc: svc}
}

// Create godoc
// @Summary      Alta de cliente
// @Description  opening_balance se registra como movimiento de apertura (positivo = debe).
// @Tags         clientes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateClientRequest true "Cliente"
// @Success      201  {object} dto.ClientResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/clients [post]
func (h *ClientsHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  Listar clientes
// @Tags     clientes
// @Security BearerAuth
// @Param    include_inactive query bool false "Incluir inactivos"
// @Success  200 {array} dto.ClientResponse
// @Router   /v1/clients [get]
func (h *ClientsHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.ListClients(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary  Actualizar cliente
// @Tags     clientes
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path     string                  true "UUID del cliente"
// @Param    body body     dto.UpdateClientRequest true "Cambios"
// @Success  200  {object} dto.ClientResponse
// @Router   /v1/clients/{id} [put]
func (h *ClientsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Statement godoc
// @Summary  Estado de cuenta del cliente
// @Tags     clientes
// @Security BearerAuth
// @Param    id path string true "UUID del cliente"
// @Success  200 {object} dto.StatementResponse
// @Router   /v1/clients/{id}/statement [get]
func (h *ClientsHandler) Statement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.statement(c, id)
}

// StatementPDF godoc
// @Summary  Estado de cuenta en PDF
// @Tags     clientes
// @Security BearerAuth
// @Produce  application/pdf
// @Param    id path string true "UUID del cliente"
// @Success  200 {file} binary
// @Router   /v1/clients/{id}/statement.pdf [get]
func (h *ClientsHandler) StatementPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.statementPDF(c, id)
}

// MyStatement godoc
// @Summary  Estado de cuenta propio
// @Tags     clientes
// @Security BearerAuth
// @Success  200 {object} dto.StatementResponse
// @Router   /v1/me/statement [get]
func (h *ClientsHandler) MyStatement(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	h.statement(c, actor.UserID)
}

func (h *ClientsHandler) MyStatementPDF(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	h.statementPDF(c, actor.UserID)
}

func (h *ClientsHandler) statement(c *gin.Context, id uuid.UUID) {
	resp, err := h.svc.Statement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientsHandler) statementPDF(c *gin.Context, id uuid.UUID) {
	pdf, err := h.svc.StatementPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="estado-de-cuenta-%s.pdf"`, id.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
