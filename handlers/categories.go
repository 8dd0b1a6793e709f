package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"joygiver-server/models"

	"github.com/gin-gonic/gin"
)

// GetCategories lists active categories
func GetCategories(c *gin.Context) {
	rows, err := db.Query(`SELECT id, name, slug, sort_order, is_active, created_at, updated_at
	                       FROM categories WHERE is_active = TRUE ORDER BY sort_order, name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.SortOrder, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns a single category by id
func GetCategory(c *gin.Context) {
	var cat models.Category
	err := db.QueryRow(`SELECT id, name, slug, sort_order, is_active, created_at, updated_at
	                    FROM categories WHERE id = $1`, c.Param("id")).Scan(
		&cat.ID, &cat.Name, &cat.Slug, &cat.SortOrder, &cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": cat})
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}

// CreateCategory creates a category (admin)
func CreateCategory(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	id := generateUUID()
	slug := slugify(req.Name)

	var exists bool
	if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	_, err := db.Exec(`INSERT INTO categories (id, name, slug, sort_order) VALUES ($1, $2, $3, $4)`,
		id, req.Name, slug, req.SortOrder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "slug": slug, "message": "Category created"})
}

// UpdateCategory updates name, ordering or active flag (admin)
func UpdateCategory(c *gin.Context) {
	var req struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
		IsActive  *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := db.Exec(`UPDATE categories
	                        SET name = COALESCE($1, name),
	                            sort_order = COALESCE($2, sort_order),
	                            is_active = COALESCE($3, is_active),
	                            updated_at = now()
	                        WHERE id = $4`,
		req.Name, req.SortOrder, req.IsActive, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// DeleteCategory removes a category (admin); attached items keep a NULL category
func DeleteCategory(c *gin.Context) {
	result, err := db.Exec(`DELETE FROM categories WHERE id = $1`, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
