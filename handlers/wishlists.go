package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"joygiver-server/models"
	"joygiver-server/services"
	"joygiver-server/utils"

	"github.com/gin-gonic/gin"
)

const wishlistColumns = `id, user_id, title, celebration_type, celebration_date, share_code, cover_image, status, currency, item_count, target_amount, amount_raised, created_at, updated_at`

func scanWishlist(scanner interface{ Scan(...interface{}) error }, w *models.Wishlist) error {
	return scanner.Scan(
		&w.ID, &w.UserID, &w.Title, &w.CelebrationType, &w.CelebrationDate, &w.ShareCode,
		&w.CoverImage, &w.Status, &w.Currency, &w.ItemCount, &w.TargetAmount, &w.AmountRaised,
		&w.CreatedAt, &w.UpdatedAt,
	)
}

// CreateWishlist creates a draft wishlist for the caller
func CreateWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Title           string    `json:"title" binding:"required"`
		CelebrationType string    `json:"celebration_type" binding:"required"`
		CelebrationDate time.Time `json:"celebration_date" binding:"required"`
		Currency        string    `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if !req.CelebrationDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Celebration date must be in the future"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	id := generateUUID()
	shareCode := utils.GenerateShareCode(10)

	_, err := db.Exec(`INSERT INTO wishlists (id, user_id, title, celebration_type, celebration_date, share_code, currency)
	                   VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, req.Title, req.CelebrationType, req.CelebrationDate, shareCode, currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wishlist"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         id,
		"share_code": shareCode,
		"status":     models.WishlistDraft,
		"message":    "Wishlist created",
	})
}

// GetMyWishlists lists the caller's wishlists
func GetMyWishlists(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := db.Query(`SELECT `+wishlistColumns+` FROM wishlists WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlists"})
		return
	}
	defer rows.Close()

	wishlists := []models.Wishlist{}
	for rows.Next() {
		var w models.Wishlist
		if err := scanWishlist(rows, &w); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan wishlist"})
			return
		}
		wishlists = append(wishlists, w)
	}

	c.JSON(http.StatusOK, gin.H{"wishlists": wishlists})
}

// GetWishlist returns one of the caller's wishlists with its items
func GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var w models.Wishlist
	row := db.QueryRow(`SELECT `+wishlistColumns+` FROM wishlists WHERE id = $1 AND user_id = $2`,
		c.Param("id"), userID)
	if err := scanWishlist(row, &w); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	items, err := loadWishlistItems(w.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	w.Items = items

	c.JSON(http.StatusOK, gin.H{"wishlist": w})
}

// UpdateWishlist updates metadata or transitions status
func UpdateWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Title           *string    `json:"title"`
		CelebrationType *string    `json:"celebration_type"`
		CelebrationDate *time.Time `json:"celebration_date"`
		Status          *string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case models.WishlistDraft, models.WishlistActive, models.WishlistClosed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}
	if req.CelebrationDate != nil && !req.CelebrationDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Celebration date must be in the future"})
		return
	}

	result, err := db.Exec(`UPDATE wishlists
	                        SET title            = COALESCE($1, title),
	                            celebration_type = COALESCE($2, celebration_type),
	                            celebration_date = COALESCE($3, celebration_date),
	                            status           = COALESCE($4, status),
	                            updated_at       = now()
	                        WHERE id = $5 AND user_id = $6`,
		req.Title, req.CelebrationType, req.CelebrationDate, req.Status, c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wishlist updated"})
}

// DeleteWishlist removes a wishlist that has not received money
func DeleteWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var amountRaised float64
	err := db.QueryRow(`SELECT amount_raised FROM wishlists WHERE id = $1 AND user_id = $2`,
		c.Param("id"), userID).Scan(&amountRaised)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if amountRaised > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot delete a wishlist that has received contributions"})
		return
	}

	if _, err := db.Exec(`DELETE FROM wishlists WHERE id = $1 AND user_id = $2`, c.Param("id"), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wishlist deleted"})
}

// UploadWishlistCover sets the cover image from an upload
func UploadWishlistCover(c *gin.Context) {
	userID := c.GetString("user_id")

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

	result, err := services.Cloudinary.UploadImage(file, "covers")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	res, err := db.Exec(`UPDATE wishlists SET cover_image = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		result.SecureURL, c.Param("id"), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cover image"})
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cover_image": result.SecureURL})
}

// GetPublicWishlist resolves a share code into an active wishlist
func GetPublicWishlist(c *gin.Context) {
	var w models.Wishlist
	row := db.QueryRow(`SELECT `+wishlistColumns+` FROM wishlists WHERE share_code = $1 AND status = $2`,
		c.Param("code"), models.WishlistActive)
	if err := scanWishlist(row, &w); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	items, err := loadWishlistItems(w.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	w.Items = items

	// Owner's display name, never their account details
	var ownerName string
	if err := db.QueryRow(`SELECT first_name FROM users WHERE id = $1`, w.UserID).Scan(&ownerName); err != nil {
		ownerName = ""
	}

	c.JSON(http.StatusOK, gin.H{"wishlist": w, "owner_name": ownerName})
}

// GetPublicItem resolves an item share code for the single-item gift page
func GetPublicItem(c *gin.Context) {
	var item models.WishlistItem
	var wishlistStatus, wishlistTitle string
	err := db.QueryRow(`
		SELECT i.id, i.wishlist_id, i.curated_item_id, i.name, i.image_url, i.price, i.priority,
		       i.share_code, i.amount_contributed, i.amount_available, i.amount_pending,
		       i.amount_withdrawn, i.is_fully_funded, i.created_at, i.updated_at,
		       w.status, w.title
		FROM wishlist_items i
		JOIN wishlists w ON w.id = i.wishlist_id
		WHERE i.share_code = $1`, c.Param("code")).Scan(
		&item.ID, &item.WishlistID, &item.CuratedItemID, &item.Name, &item.ImageURL, &item.Price,
		&item.Priority, &item.ShareCode, &item.AmountContributed, &item.AmountAvailable,
		&item.AmountPending, &item.AmountWithdrawn, &item.IsFullyFunded, &item.CreatedAt,
		&item.UpdatedAt, &wishlistStatus, &wishlistTitle)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if wishlistStatus != models.WishlistActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item, "wishlist_title": wishlistTitle})
}

func loadWishlistItems(wishlistID string) ([]models.WishlistItem, error) {
	rows, err := db.Query(`
		SELECT id, wishlist_id, curated_item_id, name, image_url, price, priority, share_code,
		       amount_contributed, amount_available, amount_pending, amount_withdrawn,
		       is_fully_funded, created_at, updated_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY priority, created_at`, wishlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.WishlistItem{}
	for rows.Next() {
		var item models.WishlistItem
		if err := rows.Scan(
			&item.ID, &item.WishlistID, &item.CuratedItemID, &item.Name, &item.ImageURL,
			&item.Price, &item.Priority, &item.ShareCode, &item.AmountContributed,
			&item.AmountAvailable, &item.AmountPending, &item.AmountWithdrawn,
			&item.IsFullyFunded, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
