package handlers

import (
	"database/sql"
	"net/http"

	"joygiver-server/utils"

	"github.com/gin-gonic/gin"
)

// ownWishlist verifies the wishlist belongs to the caller and returns its status
func ownWishlist(c *gin.Context, wishlistID, userID string) (status string, ok bool) {
	err := db.QueryRow(`SELECT status FROM wishlists WHERE id = $1 AND user_id = $2`, wishlistID, userID).Scan(&status)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist not found"})
		return "", false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return "", false
	}
	return status, true
}

// AddWishlistItem adds an item from the catalog or free-form
func AddWishlistItem(c *gin.Context) {
	userID := c.GetString("user_id")
	wishlistID := c.Param("id")

	var req struct {
		CuratedItemID string  `json:"curated_item_id"`
		Name          string  `json:"name"`
		ImageURL      string  `json:"image_url"`
		Price         float64 `json:"price"`
		Priority      int     `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if _, ok := ownWishlist(c, wishlistID, userID); !ok {
		return
	}

	name := req.Name
	price := req.Price
	imageURL := req.ImageURL
	var curatedItemID interface{}

	if req.CuratedItemID != "" {
		// Catalog item: global, or a custom item owned by the caller
		var itemName string
		var itemPrice float64
		var itemImage sql.NullString
		err := db.QueryRow(`
			SELECT name, price, image_url FROM curated_items
			WHERE id = $1 AND is_active = TRUE AND (scope = 'global' OR creator_id = $2)`,
			req.CuratedItemID, userID).Scan(&itemName, &itemPrice, &itemImage)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Catalog item not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		curatedItemID = req.CuratedItemID
		if name == "" {
			name = itemName
		}
		if price == 0 {
			price = itemPrice
		}
		if imageURL == "" && itemImage.Valid {
			imageURL = itemImage.String
		}
	}

	if name == "" || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item name and positive price are required"})
		return
	}

	var imageValue interface{}
	if imageURL != "" {
		imageValue = imageURL
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	itemID := generateUUID()
	shareCode := utils.GenerateShareCode(10)

	_, err = tx.Exec(`INSERT INTO wishlist_items (id, wishlist_id, curated_item_id, name, image_url, price, priority, share_code)
	                  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		itemID, wishlistID, curatedItemID, name, imageValue, price, req.Priority, shareCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	// Keep the wishlist aggregates in the same transaction
	_, err = tx.Exec(`UPDATE wishlists
	                  SET item_count = item_count + 1,
	                      target_amount = target_amount + $1,
	                      updated_at = now()
	                  WHERE id = $2`, price, wishlistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         itemID,
		"share_code": shareCode,
		"message":    "Item added",
	})
}

// RemoveWishlistItem deletes an item that has not received money
func RemoveWishlistItem(c *gin.Context) {
	userID := c.GetString("user_id")
	wishlistID := c.Param("id")
	itemID := c.Param("itemId")

	if _, ok := ownWishlist(c, wishlistID, userID); !ok {
		return
	}

	var price, contributed float64
	err := db.QueryRow(`SELECT price, amount_contributed FROM wishlist_items WHERE id = $1 AND wishlist_id = $2`,
		itemID, wishlistID).Scan(&price, &contributed)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if contributed > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot remove an item that has received contributions"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM wishlist_items WHERE id = $1`, itemID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	if _, err := tx.Exec(`UPDATE wishlists
	                      SET item_count = item_count - 1,
	                          target_amount = target_amount - $1,
	                          updated_at = now()
	                      WHERE id = $2`, price, wishlistID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

// ReorderWishlistItems rewrites item priorities in one shot
func ReorderWishlistItems(c *gin.Context) {
	userID := c.GetString("user_id")
	wishlistID := c.Param("id")

	var req struct {
		ItemIDs []string `json:"item_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ItemIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_ids is required"})
		return
	}

	if _, ok := ownWishlist(c, wishlistID, userID); !ok {
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	for position, itemID := range req.ItemIDs {
		result, err := tx.Exec(`UPDATE wishlist_items SET priority = $1, updated_at = now()
		                        WHERE id = $2 AND wishlist_id = $3`, position, itemID, wishlistID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder items"})
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Item does not belong to this wishlist"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Items reordered"})
}
