package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contributionRow(contribID, wishlistID uuid.UUID, itemID interface{}, amount float64, strategy interface{}, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "wishlist_id", "wishlist_item_id", "amount", "strategy", "status"}).
		AddRow(contribID.String(), wishlistID.String(), itemID, amount, strategy, status)
}

func TestSettleContributionItemGift(t *testing.T) {
	mock := newMockDB(t)
	contribID, wishlistID, itemID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery("FROM contributions WHERE payment_reference").WithArgs("pi_item").
		WillReturnRows(contributionRow(contribID, wishlistID, itemID.String(), 40.0, nil, "pending"))
	mock.ExpectBegin()
	mock.ExpectExec("SET amount_pending = GREATEST").
		WithArgs(40.0, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO contribution_allocations").
		WithArgs(sqlmock.AnyArg(), contribID, itemID, 40.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(40.0, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlists SET amount_raised").
		WithArgs(40.0, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contributions SET status").
		WithArgs("succeeded", contribID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT u.push_token").WithArgs(wishlistID).
		WillReturnRows(sqlmock.NewRows([]string{"push_token"}).AddRow(nil))

	require.NoError(t, settleContribution("pi_item"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleContributionSplitsAcrossItems(t *testing.T) {
	mock := newMockDB(t)
	contribID, wishlistID := uuid.New(), uuid.New()
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM contributions WHERE payment_reference").WithArgs("pi_split").
		WillReturnRows(contributionRow(contribID, wishlistID, nil, 70.0, "priority", "pending"))
	mock.ExpectQuery("FROM wishlist_items").WithArgs(wishlistID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "price", "priority", "amount_contributed", "created_at"}).
			AddRow(first.String(), 50.0, 1, 0.0, time.Now().Add(-2*time.Hour)).
			AddRow(second.String(), 100.0, 2, 0.0, time.Now().Add(-time.Hour)))

	mock.ExpectBegin()
	// First item takes its full 50, the rest flows to the second
	mock.ExpectExec("INSERT INTO contribution_allocations").
		WithArgs(sqlmock.AnyArg(), contribID, first, 50.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(50.0, first).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO contribution_allocations").
		WithArgs(sqlmock.AnyArg(), contribID, second, 20.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(20.0, second).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wishlists SET amount_raised").
		WithArgs(70.0, wishlistID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE contributions SET status").
		WithArgs("succeeded", contribID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT u.push_token").WithArgs(wishlistID).
		WillReturnError(errNoRows())

	require.NoError(t, settleContribution("pi_split"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleContributionIsIdempotent(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM contributions WHERE payment_reference").WithArgs("pi_replay").
		WillReturnRows(contributionRow(uuid.New(), uuid.New(), nil, 25.0, "equal", "succeeded"))

	// A replayed webhook must not touch anything
	require.NoError(t, settleContribution("pi_replay"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleContributionUnknownReference(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("FROM contributions WHERE payment_reference").WithArgs("pi_unknown").
		WillReturnError(errNoRows())

	require.NoError(t, settleContribution("pi_unknown"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkContributionFailedReleasesEarmark(t *testing.T) {
	mock := newMockDB(t)
	itemID := uuid.NewString()

	mock.ExpectQuery("UPDATE contributions SET status").WithArgs("failed", "pi_fail", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"wishlist_item_id", "amount"}).AddRow(itemID, 19.99))
	mock.ExpectExec("SET amount_pending = GREATEST").WithArgs(19.99, itemID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	markContributionFailed("pi_fail")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkContributionFailedIgnoresNonPending(t *testing.T) {
	mock := newMockDB(t)

	// Already settled or unknown: the status guard matches no row
	mock.ExpectQuery("UPDATE contributions SET status").WithArgs("failed", "pi_gone", "pending").
		WillReturnError(errNoRows())

	markContributionFailed("pi_gone")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	newMockDB(t)
	r := gin.New()
	r.POST("/webhooks/stripe", HandleStripeWebhook)

	w := performRequest(t, r, "POST", "/webhooks/stripe", gin.H{"type": "payment_intent.succeeded"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
