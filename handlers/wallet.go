package handlers

import (
	"database/sql"
	"net/http"

	"joygiver-server/config"
	"joygiver-server/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetWallet returns the caller's wallet
func GetWallet(c *gin.Context) {
	userID := c.GetString("user_id")

	var wallet models.Wallet
	err := db.QueryRow(`SELECT id, user_id, balance, pending, total_withdrawn, currency, created_at, updated_at
	                    FROM wallets WHERE user_id = $1`, userID).Scan(
		&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.Pending, &wallet.TotalWithdrawn,
		&wallet.Currency, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// GetWalletTransactions lists the caller's wallet ledger entries
func GetWalletTransactions(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := paginationParams(c)
	offset := (page - 1) * limit

	rows, err := db.Query(`
		SELECT t.id, t.wallet_id, t.type, t.amount, t.reference, t.description, t.created_at
		FROM wallet_transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}
	defer rows.Close()

	transactions := []models.WalletTransaction{}
	for rows.Next() {
		var t models.WalletTransaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Reference, &t.Description, &t.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan transaction"})
			return
		}
		transactions = append(transactions, t)
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "page": page, "limit": limit})
}

// WithdrawItemFunds moves one item's available balance into the wallet
func WithdrawItemFunds(c *gin.Context) {
	userID := c.GetString("user_id")
	itemID := c.Param("id")

	// The item must sit on one of the caller's wishlists
	var available float64
	var itemName string
	err := db.QueryRow(`
		SELECT i.amount_available, i.name
		FROM wishlist_items i
		JOIN wishlists w ON w.id = i.wishlist_id
		WHERE i.id = $1 AND w.user_id = $2`, itemID, userID).Scan(&available, &itemName)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if available <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No funds available on this item"})
		return
	}

	var walletID string
	if err := db.QueryRow(`SELECT id FROM wallets WHERE user_id = $1`, userID).Scan(&walletID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wallet not found"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	if err := sweepItemTx(tx, itemID, itemName, walletID, userID, available); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw item funds"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw item funds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"amount":  available,
		"message": "Funds moved to wallet",
	})
}

// WithdrawWishlistFunds sweeps every funded item of a wishlist into the wallet
func WithdrawWishlistFunds(c *gin.Context) {
	userID := c.GetString("user_id")
	wishlistID := c.Param("id")

	if _, ok := ownWishlist(c, wishlistID, userID); !ok {
		return
	}

	rows, err := db.Query(`SELECT id, name, amount_available FROM wishlist_items
	                       WHERE wishlist_id = $1 AND amount_available > 0`, wishlistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	type sweep struct {
		id, name string
		amount   float64
	}
	sweeps := []sweep{}
	for rows.Next() {
		var s sweep
		if err := rows.Scan(&s.id, &s.name, &s.amount); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan item"})
			return
		}
		sweeps = append(sweeps, s)
	}
	rows.Close()

	if len(sweeps) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No funds available on this wishlist"})
		return
	}

	var walletID string
	if err := db.QueryRow(`SELECT id FROM wallets WHERE user_id = $1`, userID).Scan(&walletID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Wallet not found"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	var total float64
	for _, s := range sweeps {
		if err := sweepItemTx(tx, s.id, s.name, walletID, userID, s.amount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw funds"})
			return
		}
		total += s.amount
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw funds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"amount":  total,
		"items":   len(sweeps),
		"message": "Funds moved to wallet",
	})
}

// sweepItemTx zeroes an item's available balance and credits the wallet
func sweepItemTx(tx *sql.Tx, itemID, itemName, walletID, userID string, amount float64) error {
	if _, err := tx.Exec(`UPDATE wishlist_items
	                      SET amount_available = 0,
	                          amount_withdrawn = amount_withdrawn + $1,
	                          updated_at = now()
	                      WHERE id = $2`, amount, itemID); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO item_withdrawals (id, wishlist_item_id, user_id, amount)
	                      VALUES ($1, $2, $3, $4)`, generateUUID(), itemID, userID, amount); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE wallets SET balance = balance + $1, updated_at = now() WHERE id = $2`,
		amount, walletID); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO wallet_transactions (id, wallet_id, type, amount, reference, description)
	                      VALUES ($1, $2, $3, $4, $5, $6)`,
		generateUUID(), walletID, models.TxCredit, amount, itemID, "Item funds: "+itemName); err != nil {
		return err
	}
	return nil
}

// RequestWithdrawal opens a payout request against the wallet balance
func RequestWithdrawal(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Amount        float64 `json:"amount" binding:"required"`
		AccountName   string  `json:"account_name" binding:"required"`
		AccountNumber string  `json:"account_number" binding:"required"`
		BankName      string  `json:"bank_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Amount < config.AppConfig.MinWithdrawal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Withdrawal is below the minimum amount"})
		return
	}

	var walletID string
	var balance float64
	err := db.QueryRow(`SELECT id, balance FROM wallets WHERE user_id = $1`, userID).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if req.Amount > balance {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Withdrawal exceeds available balance"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	requestID := generateUUID()
	if _, err := tx.Exec(`INSERT INTO withdrawal_requests (id, user_id, wallet_id, amount, account_name, account_number, bank_name)
	                      VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		requestID, userID, walletID, req.Amount, req.AccountName, req.AccountNumber, req.BankName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal request"})
		return
	}

	// Earmark the money while the request is reviewed
	if _, err := tx.Exec(`UPDATE wallets SET balance = balance - $1, pending = pending + $1, updated_at = now()
	                      WHERE id = $2`, req.Amount, walletID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve funds"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      requestID,
		"status":  models.WithdrawalPending,
		"message": "Withdrawal request submitted",
	})
}

// GetMyWithdrawals lists the caller's withdrawal requests
func GetMyWithdrawals(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := db.Query(`
		SELECT id, user_id, wallet_id, amount, account_name, account_number, bank_name,
		       status, reviewed_by, reviewed_at, created_at, updated_at
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
		return
	}
	defer rows.Close()

	withdrawals, err := scanWithdrawals(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// AdminGetWithdrawals lists withdrawal requests, filterable by status
func AdminGetWithdrawals(c *gin.Context) {
	status := c.DefaultQuery("status", models.WithdrawalPending)

	rows, err := db.Query(`
		SELECT id, user_id, wallet_id, amount, account_name, account_number, bank_name,
		       status, reviewed_by, reviewed_at, created_at, updated_at
		FROM withdrawal_requests
		WHERE status = $1
		ORDER BY created_at`, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch withdrawals"})
		return
	}
	defer rows.Close()

	withdrawals, err := scanWithdrawals(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

func scanWithdrawals(rows *sql.Rows) ([]models.WithdrawalRequest, error) {
	withdrawals := []models.WithdrawalRequest{}
	for rows.Next() {
		var w models.WithdrawalRequest
		if err := rows.Scan(&w.ID, &w.UserID, &w.WalletID, &w.Amount, &w.AccountName,
			&w.AccountNumber, &w.BankName, &w.Status, &w.ReviewedBy, &w.ReviewedAt,
			&w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// AdminApproveWithdrawal marks a pending request paid and settles the wallet
func AdminApproveWithdrawal(c *gin.Context) {
	adminID := c.GetString("user_id")
	requestID := c.Param("id")

	var walletID string
	var amount float64
	var status string
	err := db.QueryRow(`SELECT wallet_id, amount, status FROM withdrawal_requests WHERE id = $1`,
		requestID).Scan(&walletID, &amount, &status)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal request not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// Only pending requests transition
	if status != models.WithdrawalPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal request already reviewed"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE withdrawal_requests
	                      SET status = $1, reviewed_by = $2, reviewed_at = now(), updated_at = now()
	                      WHERE id = $3`, models.WithdrawalPaid, adminID, requestID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve withdrawal"})
		return
	}
	if _, err := tx.Exec(`UPDATE wallets
	                      SET pending = pending - $1, total_withdrawn = total_withdrawn + $1, updated_at = now()
	                      WHERE id = $2`, amount, walletID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to settle wallet"})
		return
	}
	if _, err := tx.Exec(`INSERT INTO wallet_transactions (id, wallet_id, type, amount, reference, description)
	                      VALUES ($1, $2, $3, $4, $5, $6)`,
		generateUUID(), walletID, models.TxWithdrawal, amount, requestID, "Withdrawal paid out"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve withdrawal"})
		return
	}

	logrus.WithFields(logrus.Fields{"request_id": requestID, "amount": amount}).Info("Withdrawal approved")

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal approved"})
}

// AdminRejectWithdrawal returns the reserved funds to the wallet balance
func AdminRejectWithdrawal(c *gin.Context) {
	adminID := c.GetString("user_id")
	requestID := c.Param("id")

	var walletID string
	var amount float64
	var status string
	err := db.QueryRow(`SELECT wallet_id, amount, status FROM withdrawal_requests WHERE id = $1`,
		requestID).Scan(&walletID, &amount, &status)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal request not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if status != models.WithdrawalPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal request already reviewed"})
		return
	}

	tx, err := db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE withdrawal_requests
	                      SET status = $1, reviewed_by = $2, reviewed_at = now(), updated_at = now()
	                      WHERE id = $3`, models.WithdrawalRejected, adminID, requestID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject withdrawal"})
		return
	}
	if _, err := tx.Exec(`UPDATE wallets
	                      SET pending = pending - $1, balance = balance + $1, updated_at = now()
	                      WHERE id = $2`, amount, walletID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release funds"})
		return
	}
	if _, err := tx.Exec(`INSERT INTO wallet_transactions (id, wallet_id, type, amount, reference, description)
	                      VALUES ($1, $2, $3, $4, $5, $6)`,
		generateUUID(), walletID, models.TxReversal, amount, requestID, "Withdrawal rejected"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal rejected"})
}
