package payment

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupPaymentMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func paymentRow(status Status, approvedDate *time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "membership_id", "amount", "payment_method", "sinpe_reference",
		"sinpe_phone", "payment_proof_url", "status", "payment_date",
		"approved_date", "approved_by", "rejection_reason", "notes",
		"created_at", "updated_at",
	}).AddRow("pay-1", "mem-1", 25000.0, "sinpe", nil, nil, nil, string(status), now,
		approvedDate, nil, nil, nil, now, now)
}

func TestUpdateStatusApprovedStampsMetadata(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	approvedAt := time.Now()
	approvedBy := "admin-1"

	mock.ExpectQuery(regexp.QuoteMeta(`approved_date = $4`)).
		WithArgs("pay-1", StatusApproved, nil, approvedAt, approvedBy).
		WillReturnRows(paymentRow(StatusApproved, &approvedAt))

	pay, err := repo.UpdateStatus(context.Background(), "pay-1", StatusUpdate{
		Status:       StatusApproved,
		ApprovedDate: &approvedAt,
		ApprovedBy:   &approvedBy,
	})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, pay.Status)
}

func TestUpdateStatusRejectedClearsApproval(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	reason := "Unreadable proof"

	mock.ExpectQuery(regexp.QuoteMeta(`rejection_reason = $4`)).
		WithArgs("pay-1", StatusRejected, nil, reason).
		WillReturnRows(paymentRow(StatusRejected, nil))

	pay, err := repo.UpdateStatus(context.Background(), "pay-1", StatusUpdate{
		Status:          StatusRejected,
		RejectionReason: &reason,
	})
	require.NoError(t, err)
	require.Equal(t, StatusRejected, pay.Status)
}

// A cancel or a revert to pending must not touch the approval or rejection
// columns that an earlier transition wrote.
func TestUpdateStatusCancelledLeavesMetadataAlone(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	approvedAt := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`SET status = $2,
		    notes = $3,
		    updated_at = NOW()
		WHERE id = $1`)).
		WithArgs("pay-1", StatusCancelled, nil).
		WillReturnRows(paymentRow(StatusCancelled, &approvedAt))

	pay, err := repo.UpdateStatus(context.Background(), "pay-1", StatusUpdate{Status: StatusCancelled})
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, pay.Status)
	require.NotNil(t, pay.ApprovedDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusUnknownPayment(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE payments`)).
		WithArgs("missing", StatusCancelled, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.UpdateStatus(context.Background(), "missing", StatusUpdate{Status: StatusCancelled})
	require.ErrorIs(t, err, ErrPaymentNotFound)
}
