package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/devphaseX/cqpay-api.git/internal/encrypt"
	"github.com/devphaseX/cqpay-api.git/internal/gateway"
	"github.com/devphaseX/cqpay-api.git/internal/payment"
	"github.com/devphaseX/cqpay-api.git/internal/store"
	"github.com/devphaseX/cqpay-api.git/internal/store/modelfilter"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const (
	generatedReferenceLength = 10

	defaultQRCodeSize = 256
	minQRCodeSize     = 128
	maxQRCodeSize     = 1024
)

type orderItemRequest struct {
	Type        store.OrderItemType `json:"type" validate:"required,oneof=line_item coupon shipping tax"`
	Name        string              `json:"name" validate:"required,max=255"`
	ProductID   string              `json:"product_id" validate:"max=64"`
	Quantity    int                 `json:"quantity" validate:"required_if=Type line_item,gte=0"`
	Subtotal    decimal.Decimal     `json:"subtotal" validate:"gte=0"`
	Total       decimal.Decimal     `json:"total" validate:"gte=0"`
	TotalTax    decimal.Decimal     `json:"total_tax" validate:"gte=0"`
	RatePercent decimal.Decimal     `json:"rate_percent" validate:"gte=0,lte=100"`
}

type createOrderRequest struct {
	Reference   string               `json:"reference" validate:"omitempty,max=64"`
	Currency    string               `json:"currency" validate:"required,iso4217"`
	TotalAmount decimal.Decimal      `json:"total_amount" validate:"gte=0"`
	Billing     store.BillingAddress `json:"billing"`
	Items       []orderItemRequest   `json:"items" validate:"required,min=1,dive"`
	ReturnURL   string               `json:"return_url" validate:"omitempty,url"`
	CancelURL   string               `json:"cancel_url" validate:"omitempty,url"`
}

// createOrder is how the storefront hands an order over before the buyer pays.
func (app *application) createOrder(w http.ResponseWriter, r *http.Request) {
	var (
		form  createOrderRequest
		admin = getAdminFromCtx(r)
	)

	if err := app.readJSON(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := validate.Struct(form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	items := make(store.OrderItems, 0, len(form.Items))
	lineItems := 0

	for _, item := range form.Items {
		if item.Type == store.LineOrderItem {
			lineItems++
		}

		items = append(items, &store.OrderItem{
			Type:        item.Type,
			Name:        item.Name,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
			Total:       item.Total,
			TotalTax:    item.TotalTax,
			RatePercent: item.RatePercent,
		})
	}

	if lineItems == 0 {
		app.badRequestResponse(w, r, errors.New("order must contain at least one line_item"))
		return
	}

	if form.Reference == "" {
		ref, err := encrypt.GenerateRandomString(generatedReferenceLength)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		form.Reference = "CQ-" + ref
	}

	order := &store.Order{
		Reference:     form.Reference,
		Currency:      form.Currency,
		TotalAmount:   form.TotalAmount,
		Status:        store.PendingOrderStatus,
		PaymentMethod: gateway.ID,
		Billing:       form.Billing,
		ReturnURL:     form.ReturnURL,
		CancelURL:     form.CancelURL,
	}

	if err := app.store.Orders.Create(r.Context(), order, items); err != nil {
		app.serverErrorResponse(w, r, fmt.Errorf("failed to create order: %w", err))
		return
	}

	app.logger.Infow("order created", "order_id", order.ID, "reference", order.Reference, "admin", admin.Subject)

	app.successResponse(w, http.StatusCreated, envelope{
		"order": order,
		"items": items,
	})
}

func (app *application) listOrders(w http.ResponseWriter, r *http.Request) {
	fq := store.PaginateQueryFilter{
		Page:         1,
		PageSize:     20,
		Sort:         "-created_at",
		SortSafelist: []string{"created_at", "-created_at", "updated_at", "-updated_at", "total_amount", "-total_amount"},
	}

	if err := fq.Parse(r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var filter modelfilter.GetOrdersFilter

	if err := app.readFilters(r, &filter); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	orders, metadata, err := app.store.Orders.List(r.Context(), fq, filter)

	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, http.StatusOK, envelope{
		"orders":   orders,
		"metadata": metadata,
	})
}

func (app *application) getOrder(w http.ResponseWriter, r *http.Request) (*store.Order, bool) {
	orderID := app.readStringID(r, "orderID")

	order, err := app.store.Orders.GetByID(r.Context(), orderID)

	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			app.notFoundResponse(w, r, "order not found")
		} else {
			app.serverErrorResponse(w, r, fmt.Errorf("failed to fetch order: %w", err))
		}
		return nil, false
	}

	return order, true
}

// initiatePayment creates a COINQVEST hosted checkout for a pending order and
// returns the URL the buyer should be redirected to.
func (app *application) initiatePayment(w http.ResponseWriter, r *http.Request) {
	if !app.gateway.Available() {
		app.gatewayUnavailableResponse(w, r)
		return
	}

	order, ok := app.getOrder(w, r)
	if !ok {
		return
	}

	if order.Status != store.PendingOrderStatus {
		app.badRequestResponse(w, r, fmt.Errorf("order is already %s", order.Status))
		return
	}

	items, err := app.store.Orders.GetItems(r.Context(), order.ID)

	if err != nil {
		app.serverErrorResponse(w, r, fmt.Errorf("failed to fetch order items: %w", err))
		return
	}

	checkout, err := app.payment.InitiatePayment(r.Context(), order, items)

	if err != nil {
		var procErr *payment.ProcessorError
		if errors.As(err, &procErr) {
			app.paymentProcessorResponse(w, r, procErr.Message, err)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	if err := app.store.Orders.SetCheckout(r.Context(), order.ID, checkout.ID, checkout.URL); err != nil {
		app.serverErrorResponse(w, r, fmt.Errorf("failed to save checkout %s: %w", checkout.ID, err))
		return
	}

	if err := app.cacheStore.Checkouts.SetOrderID(r.Context(), checkout.ID, order.ID); err != nil {
		app.logger.Warnw("failed to cache checkout", "checkout_id", checkout.ID, "order_id", order.ID, "error", err)
	}

	app.logger.Infow("checkout created", "order_id", order.ID, "checkout_id", checkout.ID)

	app.successResponse(w, http.StatusOK, envelope{
		"result":      "success",
		"redirect":    checkout.URL,
		"checkout_id": checkout.ID,
	})
}

// checkoutQRCode renders the open checkout URL as a PNG for wallet apps.
func (app *application) checkoutQRCode(w http.ResponseWriter, r *http.Request) {
	size := defaultQRCodeSize

	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRCodeSize || n > maxQRCodeSize {
			app.badRequestResponse(w, r, fmt.Errorf("size must be between %d and %d", minQRCodeSize, maxQRCodeSize))
			return
		}
		size = n
	}

	order, ok := app.getOrder(w, r)
	if !ok {
		return
	}

	if order.Status != store.PendingOrderStatus || order.CheckoutURL == "" {
		app.notFoundResponse(w, r, "order has no open checkout")
		return
	}

	png, err := qrcode.Encode(order.CheckoutURL, qrcode.Medium, size)

	if err != nil {
		app.serverErrorResponse(w, r, fmt.Errorf("failed to encode qr code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// paymentDetails is the admin view of an order's COINQVEST checkout and payment.
func (app *application) paymentDetails(w http.ResponseWriter, r *http.Request) {
	order, ok := app.getOrder(w, r)
	if !ok {
		return
	}

	details := gateway.PaymentDetailsFor(order)
	if details == nil {
		app.notFoundResponse(w, r, "order has no COINQVEST checkout")
		return
	}

	payments, err := app.store.Payments.GetByOrderID(r.Context(), order.ID)

	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, http.StatusOK, envelope{
		"order_id":        order.ID,
		"status":          order.Status,
		"payment_details": details,
		"payments":        payments,
	})
}
