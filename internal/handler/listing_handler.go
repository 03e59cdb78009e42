package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/common/auth"
	"github.com/staynest/service-booking/internal/common/middleware"
	"github.com/staynest/service-booking/internal/common/response"
)

// ListingHandler handles HTTP requests for listings and their availability.
type ListingHandler struct {
	service      *application.ListingService
	availability *application.AvailabilityService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *application.ListingService, availability *application.AvailabilityService) *ListingHandler {
	return &ListingHandler{service: service, availability: availability}
}

// RegisterRoutes registers listing routes. Availability is public.
func (h *ListingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	ownerRole := middleware.RequireRole(auth.RoleOwner)

	listings := r.Group("/api/v1/listings")
	{
		listings.GET("/:id/availability", h.CheckAvailability)
		listings.GET("/:id", h.GetListing)
		listings.POST("", authMW, ownerRole, h.CreateListing)
		listings.GET("", authMW, ownerRole, h.GetMyListings)
		listings.PUT("/:id", authMW, ownerRole, h.UpdateListing)
		listings.DELETE("/:id", authMW, ownerRole, h.DeactivateListing)
	}
}

// CheckAvailability handles GET /api/v1/listings/:id/availability.
func (h *ListingHandler) CheckAvailability(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	checkIn, checkOut := c.Query("check_in"), c.Query("check_out")
	if checkIn == "" || checkOut == "" {
		response.BadRequest(c, "check_in and check_out are required")
		return
	}

	result, err := h.availability.CheckAvailability(c.Request.Context(), listingID, checkIn, checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateListing creates a new listing for the current owner.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateListing(c.Request.Context(), ownerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetMyListings returns all listings of the current owner.
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetMyListings(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetListing returns a single listing by ID.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	result, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateListing updates a listing.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	var req application.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateListing(c.Request.Context(), ownerID, listingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeactivateListing stops a listing from taking new bookings.
func (h *ListingHandler) DeactivateListing(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid listing ID")
		return
	}

	if err := h.service.DeactivateListing(c.Request.Context(), ownerID, listingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "listing deactivated"})
}
