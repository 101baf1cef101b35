package transport

import (
	"net/http"
	"time"

	"mall-api/internal/middleware"
	"mall-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecordPurchaseRequest represents the record-purchase request payload.
// The product name is taken at face value: purchases of unknown products
// are recorded all the same.
type RecordPurchaseRequest struct {
	ProductName string `json:"product_name" validate:"required"`
}

// PurchaseResponse represents a single purchase history entry
type PurchaseResponse struct {
	ProductName  string `json:"product_name"`
	PurchaseTime string `json:"purchase_time"`
}

// PurchaseHandler handles HTTP requests for purchase history
type PurchaseHandler struct {
	purchaseService service.PurchaseService
	logger          *zap.Logger
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService service.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// RegisterRoutes registers all purchase routes; both require authentication
func (h *PurchaseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/purchases", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.RecordPurchase)
		r.Get("/", h.ListPurchases)
	})
}

// RecordPurchase appends a purchase record for the authenticated account
func (h *PurchaseHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		h.logger.Error("Username not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req RecordPurchaseRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Record purchase validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.purchaseService.RecordPurchase(r.Context(), req.ProductName, username)
	if err != nil {
		h.logger.Error("Failed to record purchase", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record purchase")
		return
	}

	h.logger.Info("Purchase recorded",
		zap.String("product_name", record.ProductName),
		zap.String("user_name", record.UserName),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Purchase history added successfully!"})
}

// ListPurchases returns the purchase history of the authenticated account
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		h.logger.Error("Username not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	records, err := h.purchaseService.ListPurchases(r.Context(), username)
	if err != nil {
		h.logger.Error("Failed to list purchases", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}

	response := make([]PurchaseResponse, 0, len(records))
	for _, record := range records {
		response = append(response, PurchaseResponse{
			ProductName:  record.ProductName,
			PurchaseTime: record.PurchaseTime.UTC().Format(time.RFC3339),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}
