package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ecom-service/internal/models"
	"ecom-service/internal/service"
	"ecom-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog       *service.CatalogService
	carts         *service.CartService
	payments      *service.PaymentService
	shipments     *service.ShipmentService
	notifications *service.NotificationService
	ratings       *service.RatingService
	profiles      *service.ProfileService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	carts *service.CartService,
	payments *service.PaymentService,
	shipments *service.ShipmentService,
	notifications *service.NotificationService,
	ratings *service.RatingService,
	profiles *service.ProfileService,
) *Handler {
	return &Handler{
		catalog:       catalog,
		carts:         carts,
		payments:      payments,
		shipments:     shipments,
		notifications: notifications,
		ratings:       ratings,
		profiles:      profiles,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(requireUser())
	{
		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/dashboard", h.dashboard)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.POST("/products/:id/add_to_cart", h.addToCart)
		v1.POST("/products/:id/add_to_wishlist", h.addToWishlist)
		v1.POST("/products/:id/add_rating", h.addRating)

		v1.GET("/cart", h.listCart)
		v1.DELETE("/cart/:id", h.removeFromCart)
		v1.POST("/cart/:id/pay", h.pay)

		v1.GET("/wishlist", h.listWishlist)

		v1.GET("/shipments", h.listShipments)
		v1.PATCH("/shipments/:id/status", h.updateShipmentStatus)

		v1.GET("/notifications", h.listNotifications)
		v1.POST("/notifications/:id/seen", h.markNotificationSeen)

		v1.GET("/profile", h.getProfile)
		v1.PUT("/profile", h.upsertProfile)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// pay handles the pay call for a cart entry
func (h *Handler) pay(c *gin.Context) {
	entryID, ok := paramID(c)
	if !ok {
		return
	}

	var req service.PayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	resp, err := h.payments.Pay(c.Request.Context(), entryID, userID(c), &req)
	if err != nil {
		// the payment survived; surface it next to the shipment failure
		if errors.Is(err, service.ErrProfileIncomplete) && resp != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      "Shipment could not be created: profile is missing delivery details",
				"payment_id": resp.PaymentID,
			})
			return
		}
		respondError(c, err, "Failed to process payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": "Payment successful.", "payment": resp})
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.catalog.CreateProduct(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) listProducts(c *gin.Context) {
	views, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) dashboard(c *gin.Context) {
	views, err := h.catalog.Dashboard(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	view, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	view, err := h.catalog.UpdateProduct(c.Request.Context(), id, userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id, userID(c)); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addToCart(c *gin.Context) {
	productID, ok := paramID(c)
	if !ok {
		return
	}

	var req service.AddToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	entry, err := h.carts.AddToCart(c.Request.Context(), productID, userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to add product to cart")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "Product added successfully.", "cart_entry": entry})
}

func (h *Handler) addToWishlist(c *gin.Context) {
	productID, ok := paramID(c)
	if !ok {
		return
	}

	entry, err := h.carts.AddToWishlist(c.Request.Context(), productID, userID(c))
	if err != nil {
		respondError(c, err, "Failed to add product to wishlist")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "Product added successfully.", "wishlist_entry": entry})
}

func (h *Handler) addRating(c *gin.Context) {
	productID, ok := paramID(c)
	if !ok {
		return
	}

	var req service.AddRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	rateable := models.Rateable{Kind: models.RateableProduct, ID: productID}
	rating, err := h.ratings.AddRating(c.Request.Context(), userID(c), rateable, &req)
	if err != nil {
		respondError(c, err, "Failed to add rating")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "Rating added successfully.", "rating": rating})
}

func (h *Handler) listCart(c *gin.Context) {
	entries, err := h.carts.ListCart(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list cart")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) removeFromCart(c *gin.Context) {
	entryID, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.carts.RemoveFromCart(c.Request.Context(), entryID, userID(c)); err != nil {
		respondError(c, err, "Failed to remove cart entry")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listWishlist(c *gin.Context) {
	entries, err := h.carts.ListWishlist(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list wishlist")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) listShipments(c *gin.Context) {
	shipments, err := h.shipments.ListShipments(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list shipments")
		return
	}
	c.JSON(http.StatusOK, shipments)
}

func (h *Handler) updateShipmentStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	shipment, err := h.shipments.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update shipment")
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (h *Handler) listNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListNotifications(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) markNotificationSeen(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkSeen(c.Request.Context(), id, userID(c)); err != nil {
		respondError(c, err, "Failed to mark notification seen")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Notification marked as seen."})
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to get profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) upsertProfile(c *gin.Context) {
	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	profile, err := h.profiles.UpsertProfile(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to save profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

const userIDKey = "userID"

// requireUser resolves the requester identity set by the auth gateway.
// Token verification happens upstream; only the user id reaches this service.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid user identity"})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors to HTTP statuses
func respondError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidPaymentMethod):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrPaymentInProgress):
		status = http.StatusConflict
	case errors.Is(err, service.ErrProfileIncomplete):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"error": msg, "details": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
