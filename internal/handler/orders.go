package handler

import (
	"net/http"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct {
	orders     service.OrderService
	deliveries service.DeliveryService
}

func NewOrdersHandler(orders service.OrderService, deliveries service.DeliveryService) *OrdersHandler {
	return &OrdersHandler{orders: orders, deliveries: deliveries}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Los precios se fijan al crear el pedido. Un cliente siempre pide para si mismo.
// @Tags         pedidos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateOrderRequest true "Pedido"
// @Success      201  {object} dto.OrderResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.CreateOrder(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  Listar pedidos
// @Tags     pedidos
// @Security BearerAuth
// @Param    client_id query string false "UUID del cliente (solo admin)"
// @Param    status    query string false "Estado"
// @Param    page      query int    false "Pagina"
// @Param    limit     query int    false "Registros por pagina"
// @Success  200 {object} dto.OrderListResponse
// @Router   /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.orders.ListOrders(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Obtener pedido
// @Tags     pedidos
// @Security BearerAuth
// @Param    id path string true "UUID del pedido"
// @Success  200 {object} dto.OrderResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterDelivery godoc
// @Summary      Registrar entrega
// @Description  Aplica cantidades entregadas por item. Con idempotency_key, un reintento devuelve el primer resultado.
// @Tags         pedidos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path     string                      true "UUID del pedido"
// @Param        body body     dto.RegisterDeliveryRequest true "Entrega"
// @Success      200  {object} dto.DeliveryResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/orders/{id}/deliveries [post]
func (h *OrdersHandler) RegisterDelivery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.RegisterDeliveryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.deliveries.RegisterDelivery(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary  Cambiar estado del pedido
// @Tags     pedidos
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path     string                       true "UUID del pedido"
// @Param    body body     dto.UpdateOrderStatusRequest true "Nuevo estado"
// @Success  200  {object} dto.OrderResponse
// @Failure  422  {object} apierror.APIError
// @Router   /v1/orders/{id}/status [patch]
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ToggleItemReady godoc
// @Summary  Marcar item listo para entregar
// @Tags     produccion
// @Security BearerAuth
// @Accept   json
// @Param    id   path string                      true "UUID del item"
// @Param    body body dto.ToggleItemReadyRequest  true "Estado"
// @Success  204
// @Failure  404 {object} apierror.APIError
// @Router   /v1/order-items/{id}/ready [patch]
func (h *OrdersHandler) ToggleItemReady(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ToggleItemReadyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.orders.ToggleItemReady(c.Request.Context(), id, *req.IsReady); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProductionQueue godoc
// @Summary  Cola de produccion
// @Tags     produccion
// @Security BearerAuth
// @Success  200 {array} dto.ProductionItemResponse
// @Router   /v1/production [get]
func (h *OrdersHandler) ProductionQueue(c *gin.Context) {
	resp, err := h.orders.ProductionQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
