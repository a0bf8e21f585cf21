package v1

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingUC domain.ListingUsecase
}

func NewListingHandler(public *gin.RouterGroup, protected *gin.RouterGroup, listingUC domain.ListingUsecase, uploadLimiter gin.HandlerFunc) {
	handler := &ListingHandler{listingUC: listingUC}

	// PUBLIC routes - no authentication, only available listings
	publicListings := public.Group("/listings")
	{
		publicListings.GET("/public", handler.Search)
		publicListings.GET("/public/:id", handler.GetDetails)
	}

	// PROTECTED routes
	protectedListings := protected.Group("/listings")
	{
		protectedListings.POST("", uploadLimiter, handler.Create)
		protectedListings.PUT("/:id", uploadLimiter, handler.Update)
		protectedListings.DELETE("/:id", handler.Delete)
	}

	landlords := protected.Group("/landlords")
	{
		landlords.GET("/listings", handler.ListMine)
	}
}

// openImages converts multipart file headers into ordered upload descriptors.
// The returned closer must run after the usecase finishes reading.
func openImages(files []*multipart.FileHeader) ([]domain.ImageUpload, func(), error) {
	var images []domain.ImageUpload
	var opened []multipart.File

	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opened = append(opened, f)
		images = append(images, domain.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        f,
		})
	}
	return images, closeAll, nil
}

// draftFromForm reads listing fields from a multipart form. Numeric fields
// that fail to parse become zero and are caught by draft validation.
func draftFromForm(c *gin.Context) *domain.ListingDraft {
	rent, _ := strconv.ParseFloat(c.PostForm("rent_per_week"), 64)
	bedrooms, _ := strconv.Atoi(c.PostForm("bedrooms"))
	bathrooms, _ := strconv.Atoi(c.PostForm("bathrooms"))

	return &domain.ListingDraft{
		Title:            c.PostForm("title"),
		Description:      c.PostForm("description"),
		Address:          c.PostForm("address"),
		Suburb:           c.PostForm("suburb"),
		City:             c.PostForm("city"),
		RentPerWeek:      rent,
		Bedrooms:         bedrooms,
		Bathrooms:        bathrooms,
		Furnished:        c.PostForm("furnished") == "true",
		PetsAllowed:      c.PostForm("pets_allowed") == "true",
		SmokersAllowed:   c.PostForm("smokers_allowed") == "true",
		Amenities:        c.PostFormArray("amenities"),
		AvailableFrom:    c.PostForm("available_from"),
		ComplianceStatus: domain.ComplianceStatus(c.PostForm("compliance_status")),
	}
}

// Create godoc
// @Summary      Submit a new listing
// @Description  Validates the draft, uploads photos in order, persists the row (Landlord only)
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /listings [post]
// @Security     BearerAuth
func (h *ListingHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.BadRequest("multipart form required"))
		return
	}

	images, closeAll, err := openImages(form.File["images"])
	if err != nil {
		c.Error(apperror.BadRequest("could not read uploaded files"))
		return
	}
	defer closeAll()

	listing, err := h.listingUC.SubmitListing(c, draftFromForm(c), images)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Listing created", listing)
}

// Search godoc
// @Summary      Search available listings (public)
// @Tags         listings
// @Produce      json
// @Param        suburb        query  string   false  "Suburb filter"
// @Param        city          query  string   false  "City filter"
// @Param        min_rent      query  number   false  "Minimum weekly rent"
// @Param        max_rent      query  number   false  "Maximum weekly rent"
// @Param        min_bedrooms  query  int      false  "Minimum bedrooms"
// @Param        pets_allowed  query  bool     false  "Pets allowed"
// @Param        near          query  string   false  "Order by distance from this address"
// @Param        page          query  int      false  "Page number"
// @Param        page_size     query  int      false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /listings/public [get]
func (h *ListingHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	minRent, _ := strconv.ParseFloat(c.Query("min_rent"), 64)
	maxRent, _ := strconv.ParseFloat(c.Query("max_rent"), 64)
	minBedrooms, _ := strconv.Atoi(c.Query("min_bedrooms"))

	filter := domain.ListingFilter{
		Suburb:      c.Query("suburb"),
		City:        c.Query("city"),
		MinRent:     minRent,
		MaxRent:     maxRent,
		MinBedrooms: minBedrooms,
		NearAddress: c.Query("near"),
		Page:        page,
		PageSize:    pageSize,
	}
	if v := c.Query("pets_allowed"); v != "" {
		pets := v == "true"
		filter.PetsAllowed = &pets
	}

	listings, total, err := h.listingUC.Search(c, filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Listing search results", gin.H{
		"listings":  listings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetDetails godoc
// @Summary      Get listing details (public)
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /listings/public/{id} [get]
func (h *ListingHandler) GetDetails(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	listing, err := h.listingUC.GetListing(c, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Listing details", listing)
}

// ListMine godoc
// @Summary      List the caller's own listings
// @Tags         landlords
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /landlords/listings [get]
// @Security     BearerAuth
func (h *ListingHandler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	listings, total, err := h.listingUC.ListByLandlord(c, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "My listings", gin.H{
		"listings":  listings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Update godoc
// @Summary      Update a listing
// @Description  Re-validates the draft, uploads any new photos, persists the merged row
// @Tags         listings
// @Accept       multipart/form-data
// @Produce      json
// @Param        id  path  int  true  "Listing ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /listings/{id} [put]
// @Security     BearerAuth
func (h *ListingHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.BadRequest("multipart form required"))
		return
	}

	images, closeAll, err := openImages(form.File["images"])
	if err != nil {
		c.Error(apperror.BadRequest("could not read uploaded files"))
		return
	}
	defer closeAll()

	listing, err := h.listingUC.UpdateListing(c, id, draftFromForm(c), images, c.PostFormArray("remove_images"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Listing updated", listing)
}

// Delete godoc
// @Summary      Delete a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /listings/{id} [delete]
// @Security     BearerAuth
func (h *ListingHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	if err := h.listingUC.DeleteListing(c, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Listing deleted", nil)
}
