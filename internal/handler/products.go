package handler

import (
	"net/http"
	"strconv"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary  Crear producto
// @Tags     productos
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body     dto.CreateProductRequest true "Producto"
// @Success  201  {object} dto.ProductResponse
// @Failure  422  {object} apierror.APIError
// @Router   /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  Listar productos
// @Tags     productos
// @Security BearerAuth
// @Param    category query string false "Categoria"
// @Param    name     query string false "Busqueda por nombre"
// @Success  200 {object} dto.ProductListResponse
// @Router   /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Si se envian variantes, reemplazan el conjunto actual. Una variante con pedidos no se puede quitar.
// @Tags         productos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path     string                   true "UUID del producto"
// @Param        body body     dto.UpdateProductRequest true "Cambios"
// @Success      200  {object} dto.ProductResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary  Eliminar producto
// @Tags     productos
// @Security BearerAuth
// @Param    id path string true "UUID del producto"
// @Success  204
// @Failure  409 {object} apierror.APIError
// @Router   /v1/products/{id} [delete]
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkPrice godoc
// @Summary      Actualizacion masiva de precios
// @Description  Ajusta el precio base por porcentaje. Con preview=true no escribe nada. Los pedidos existentes conservan su precio.
// @Tags         productos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body     dto.BulkPriceRequest true "Ajuste"
// @Success      200  {object} dto.BulkPriceResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/products/bulk-price [post]
func (h *ProductsHandler) BulkPrice(c *gin.Context) {
	var req dto.BulkPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BulkUpdatePrices(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PriceHistory godoc
// @Summary      Historial de precios de un producto
// @Description  Historial inmutable de cambios de precio, ordenado por fecha descendente.
// @Tags         productos
// @Security     BearerAuth
// @Param        id    path     string  true  "UUID del producto"
// @Param        page  query    int     false "Pagina (default 1)"
// @Param        limit query    int     false "Registros por pagina (default 50, max 200)"
// @Success      200   {object} dto.PriceHistoryListResponse
// @Router       /v1/products/{id}/price-history [get]
func (h *ProductsHandler) PriceHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, total, err := h.svc.PriceHistory(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PriceHistoryListResponse{Data: rows, Total: total, Page: page, Limit: limit})
}

// Catalog godoc
// @Summary      Catalogo visible para el usuario
// @Description  Los clientes ven solo las categorias habilitadas.
// @Tags         productos
// @Security     BearerAuth
// @Success      200 {array} dto.ProductResponse
// @Router       /v1/catalog [get]
func (h *ProductsHandler) Catalog(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListCatalog(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
