package dao

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorDAO_FindByUserID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewVendorDAO(db)

	mock.ExpectQuery(`SELECT \* FROM "vendors" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.FindByUserID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrVendorNotFound)
}

func TestVendorDAO_AddGood(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewVendorDAO(db)

	mock.ExpectExec(`UPDATE "vendors" SET "goods_sold"=array_append\(goods_sold,\$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// already present: no rows touched, still no error
	assert.NoError(t, d.AddGood(context.Background(), 5, "Honey"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVendorDAO_RemoveGood(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewVendorDAO(db)

	mock.ExpectExec(`UPDATE "vendors" SET "goods_sold"=array_remove\(goods_sold,\$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, d.RemoveGood(context.Background(), 5, "Honey"))

	mock.ExpectExec(`UPDATE "vendors" SET "goods_sold"=array_remove`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, d.RemoveGood(context.Background(), 6, "Honey"), ErrVendorNotFound)
}

func TestVendorDAO_CountProducts(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewVendorDAO(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE vendor_id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := d.CountProducts(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
