package handler

import (
	"net/http"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// Register godoc
// @Summary      Registrar pago
// @Description  Acredita exactamente el monto en la cuenta del cliente. Reintentos con la misma idempotency_key no acreditan dos veces.
// @Tags         pagos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body     dto.RegisterPaymentRequest true "Pago"
// @Success      201  {object} dto.PaymentResponse
// @Success      200  {object} dto.PaymentResponse "Reintento con la misma clave"
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/payments [post]
func (h *PaymentsHandler) Register(c *gin.Context) {
	var req dto.RegisterPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// List godoc
// @Summary  Listar pagos
// @Tags     pagos
// @Security BearerAuth
// @Param    client_id query string false "UUID del cliente (solo admin)"
// @Param    page      query int    false "Pagina"
// @Param    limit     query int    false "Registros por pagina"
// @Success  200 {object} dto.PaymentListResponse
// @Router   /v1/payments [get]
func (h *PaymentsHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var filter dto.PaymentFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListPayments(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
