package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"joygiver-server/models"
	"joygiver-server/services"

	"github.com/gin-gonic/gin"
)

func scanCuratedItem(scanner interface{ Scan(...interface{}) error }, item *models.CuratedItem) error {
	return scanner.Scan(
		&item.ID, &item.CategoryID, &item.CreatorID, &item.Name, &item.Description,
		&item.ImageURL, &item.Price, &item.Currency, &item.Scope, &item.IsActive,
		&item.CreatedAt, &item.UpdatedAt,
	)
}

const curatedItemColumns = `id, category_id, creator_id, name, description, image_url, price, currency, scope, is_active, created_at, updated_at`

// GetCuratedItems lists active global items, optionally by category
func GetCuratedItems(c *gin.Context) {
	page, limit := paginationParams(c)
	offset := (page - 1) * limit

	var rows *sql.Rows
	var err error
	if categoryID := c.Query("category_id"); categoryID != "" {
		rows, err = db.Query(`SELECT `+curatedItemColumns+` FROM curated_items
		                      WHERE scope = 'global' AND is_active = TRUE AND category_id = $1
		                      ORDER BY created_at DESC LIMIT $2 OFFSET $3`, categoryID, limit, offset)
	} else {
		rows, err = db.Query(`SELECT `+curatedItemColumns+` FROM curated_items
		                      WHERE scope = 'global' AND is_active = TRUE
		                      ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	defer rows.Close()

	items := []models.CuratedItem{}
	for rows.Next() {
		var item models.CuratedItem
		if err := scanCuratedItem(rows, &item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan item"})
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "page": page, "limit": limit})
}

// GetMyCuratedItems lists the caller's custom items
func GetMyCuratedItems(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := db.Query(`SELECT `+curatedItemColumns+` FROM curated_items
	                       WHERE creator_id = $1 AND is_active = TRUE
	                       ORDER BY created_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	defer rows.Close()

	items := []models.CuratedItem{}
	for rows.Next() {
		var item models.CuratedItem
		if err := scanCuratedItem(rows, &item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan item"})
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateCuratedItem creates a custom item owned by the caller
func CreateCuratedItem(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		CategoryID  string  `json:"category_id"`
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		ImageURL    string  `json:"image_url"`
		Price       float64 `json:"price" binding:"required"`
		Currency    string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	var categoryID interface{}
	if req.CategoryID != "" {
		categoryID = req.CategoryID
	}
	var description, imageURL interface{}
	if req.Description != "" {
		description = req.Description
	}
	if req.ImageURL != "" {
		imageURL = req.ImageURL
	}

	id := generateUUID()
	_, err := db.Exec(`INSERT INTO curated_items (id, category_id, creator_id, name, description, image_url, price, currency, scope)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'custom')`,
		id, categoryID, userID, req.Name, description, imageURL, req.Price, currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Item created"})
}

// AdminCreateCuratedItem creates a global catalog item
func AdminCreateCuratedItem(c *gin.Context) {
	var req struct {
		CategoryID  string  `json:"category_id"`
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		ImageURL    string  `json:"image_url"`
		Price       float64 `json:"price" binding:"required"`
		Currency    string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	var categoryID interface{}
	if req.CategoryID != "" {
		categoryID = req.CategoryID
	}
	var description, imageURL interface{}
	if req.Description != "" {
		description = req.Description
	}
	if req.ImageURL != "" {
		imageURL = req.ImageURL
	}

	id := generateUUID()
	_, err := db.Exec(`INSERT INTO curated_items (id, category_id, name, description, image_url, price, currency, scope)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7, 'global')`,
		id, categoryID, req.Name, description, imageURL, req.Price, currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Item created"})
}

// AdminUpdateCuratedItem updates a global item
func AdminUpdateCuratedItem(c *gin.Context) {
	var req struct {
		CategoryID  *string  `json:"category_id"`
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		ImageURL    *string  `json:"image_url"`
		Price       *float64 `json:"price"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
		return
	}

	result, err := db.Exec(`UPDATE curated_items
	                        SET category_id = COALESCE($1, category_id),
	                            name        = COALESCE($2, name),
	                            description = COALESCE($3, description),
	                            image_url   = COALESCE($4, image_url),
	                            price       = COALESCE($5, price),
	                            is_active   = COALESCE($6, is_active),
	                            updated_at  = now()
	                        WHERE id = $7 AND scope = 'global'`,
		req.CategoryID, req.Name, req.Description, req.ImageURL, req.Price, req.IsActive, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item updated"})
}

// AdminDeleteCuratedItem soft-deletes a global item
func AdminDeleteCuratedItem(c *gin.Context) {
	result, err := db.Exec(`UPDATE curated_items SET is_active = FALSE, updated_at = now()
	                        WHERE id = $1 AND scope = 'global'`, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// UploadItemImage uploads an item image and returns its URL
func UploadItemImage(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	if services.Cloudinary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	result, err := services.Cloudinary.UploadImage(file, "items")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL})
}

// paginationParams reads page/limit query params with sane bounds
func paginationParams(c *gin.Context) (page, limit int) {
	page = 1
	limit = 20
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return page, limit
}
