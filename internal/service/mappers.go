package service

import (
	"time"

	"arcadeorders/internal/dto"
	"arcadeorders/internal/model"
)

func clientToResponse(u *model.User) dto.ClientResponse {
	cats := []string(u.AllowedCategories)
	if cats == nil {
		cats = []string{}
	}
	return dto.ClientResponse{
		ID:                  u.ID.String(),
		Email:               u.Email,
		Name:                u.Name,
		Phone:               u.Phone,
		Balance:             u.Balance,
		IsRetailer:          u.IsRetailer,
		SurchargePercentage: u.SurchargePercentage,
		AllowedCategories:   cats,
		Active:              u.Active,
	}
}

func orderItemToResponse(it *model.OrderItem) dto.OrderItemResponse {
	r := dto.OrderItemResponse{
		ID:                   it.ID.String(),
		VariantID:            it.VariantID.String(),
		Quantity:             it.Quantity,
		DeliveredQuantity:    it.DeliveredQuantity,
		Price:                it.Price,
		Subtotal:             it.LineTotal(),
		ButtonsType:          it.ButtonsType,
		LEDSurchargeSnapshot: it.LEDSurchargeSnapshot,
		IsReady:              it.IsReady,
	}
	if it.Variant != nil {
		r.VariantName = it.Variant.Name
		if it.Variant.Product != nil {
			r.ProductName = it.Variant.Product.Name
		}
	}
	return r
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	r := &dto.OrderResponse{
		ID:        o.ID.String(),
		ClientID:  o.UserID.String(),
		Total:     o.Total,
		Status:    o.Status,
		Notes:     o.Notes,
		Items:     make([]dto.OrderItemResponse, len(o.Items)),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
	if o.User != nil {
		r.ClientName = o.User.Name
	}
	for i := range o.Items {
		r.Items[i] = orderItemToResponse(&o.Items[i])
	}
	return r
}

func deliveryRecordToResponse(d *model.Delivery) dto.DeliveryRecordResponse {
	r := dto.DeliveryRecordResponse{
		ID:             d.ID.String(),
		IdempotencyKey: d.IdempotencyKey,
		ResultStatus:   d.ResultStatus,
		Value:          d.Value,
		Lines:          make([]dto.DeliveryLineResponse, len(d.Lines)),
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
	for i, l := range d.Lines {
		r.Lines[i] = dto.DeliveryLineResponse{ItemID: l.OrderItemID.String(), Quantity: l.Quantity, Value: l.Value}
	}
	return r
}

func paymentToResponse(p *model.Payment, replayed bool) *dto.PaymentResponse {
	r := &dto.PaymentResponse{
		ID:        p.ID.String(),
		ClientID:  p.UserID.String(),
		Amount:    p.Amount,
		Method:    p.Method,
		Type:      p.Type,
		Notes:     p.Notes,
		Replayed:  replayed,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.User != nil {
		r.ClientName = p.User.Name
	}
	return r
}

func productToResponse(p *model.Product) dto.ProductResponse {
	r := dto.ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Subcategory:  p.Subcategory,
		ImageURL:     p.ImageURL,
		BasePrice:    p.BasePrice,
		LEDSurcharge: p.LEDSurcharge,
		Variants:     make([]dto.VariantResponse, len(p.Variants)),
	}
	for i, v := range p.Variants {
		r.Variants[i] = dto.VariantResponse{ID: v.ID.String(), Name: v.Name, ImageURL: v.ImageURL}
	}
	return r
}
