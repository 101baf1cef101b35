package transport

import (
	"errors"
	"net/http"

	"mall-api/internal/middleware"
	"mall-api/internal/repository"
	"mall-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddProductRequest represents the add-product request payload
type AddProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	ThumbnailURL string  `json:"thumbnail_url" validate:"required"`
}

// ProductResponse represents a single catalog entry
type ProductResponse struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

// AddProductResponse represents the add-product response
type AddProductResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// CatalogHandler handles HTTP requests for the product catalog
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes. Listing is public; catalog
// mutations require an authenticated admin.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.AddProduct)
			r.Delete("/{name}", h.DeleteProduct)
		})
	})
}

// ListProducts returns every catalog entry
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, ProductResponse{
			Name:         p.Name,
			Category:     p.Category,
			Price:        p.Price,
			ThumbnailURL: p.ThumbnailURL,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// AddProduct creates a catalog entry; a duplicate name is a conflict and
// leaves the catalog unchanged
func (h *CatalogHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.AddProduct(r.Context(), req.Name, req.Category, req.Price, req.ThumbnailURL)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateProduct) {
			h.logger.Debug("Duplicate product rejected", zap.String("name", req.Name))
			middleware.RespondWithError(w, http.StatusConflict, "Product with the same name already exists.")
			return
		}

		h.logger.Error("Failed to add product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add product")
		return
	}

	h.logger.Info("Product added successfully", zap.String("name", product.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, AddProductResponse{
		Message: "Product added successfully!",
		Product: ProductResponse{
			Name:         product.Name,
			Category:     product.Category,
			Price:        product.Price,
			ThumbnailURL: product.ThumbnailURL,
		},
	})
}

// DeleteProduct removes every product matching the name in the path.
// Deletion is idempotent: an unknown name still reports success.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	deleted, err := h.catalogService.DeleteProduct(r.Context(), name)
	if err != nil {
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product delete completed",
		zap.String("name", name),
		zap.Int64("deleted", deleted),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully!"})
}
