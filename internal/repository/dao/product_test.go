package dao

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductDAO_Search_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewProductDAO(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" JOIN vendors ON vendors.id = products.vendor_id WHERE \(?products.name ILIKE \$1 OR products.description ILIKE \$2 OR products.tags && \$3 OR vendors.name ILIKE \$4\)?`).
		WithArgs("%honey%", "%honey%", pq.StringArray{"HONEY"}, "%honey%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	products, total, err := d.Search(context.Background(), "honey", []string{"HONEY"}, 0, 12)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDAO_Search_Page(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	d := NewProductDAO(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" JOIN vendors`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))
	mock.ExpectQuery(`SELECT products\.\* FROM "products" JOIN vendors ON vendors.id = products.vendor_id .*ORDER BY products.created_at DESC, products.id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "vendor_id", "created_at", "updated_at"}).
			AddRow(21, "Wildflower honey", 9.5, 2, now, now))
	mock.ExpectQuery(`SELECT \* FROM "product_images" WHERE "product_images"."product_id" = \$1 ORDER BY position ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "url", "position"}).
			AddRow(1, 21, "https://cdn.test/products/a.jpg", 0))
	mock.ExpectQuery(`SELECT \* FROM "vendors" WHERE "vendors"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "market_id"}).AddRow(2, "Bee Farm", 1))
	mock.ExpectQuery(`SELECT \* FROM "markets" WHERE "markets"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Riverside Market"))

	products, total, err := d.Search(context.Background(), "honey", []string{"HONEY"}, 12, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Bee Farm", products[0].Vendor.Name)
	assert.Equal(t, "Riverside Market", products[0].Vendor.Market.Name)
	require.Len(t, products[0].Images, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDAO_FindOwned_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewProductDAO(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE products.vendor_id IN \(SELECT "?id"? FROM "vendors" WHERE user_id = \$1\) AND products.id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.FindOwned(context.Background(), 8, 3)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductDAO_Update_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewProductDAO(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET .* WHERE products.vendor_id IN \(SELECT "?id"? FROM "vendors" WHERE user_id = \$\d+\) AND products.id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := d.Update(context.Background(), 3, Product{ID: 8, Name: "Rye"}, true)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDAO_Update_ReplacesImages(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewProductDAO(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "product_images" WHERE product_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "product_images"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	updated, err := d.Update(context.Background(), 3, Product{
		ID:     8,
		Name:   "Rye",
		Images: []ProductImage{{URL: "https://cdn.test/products/b.jpg"}},
	}, true)
	require.NoError(t, err)
	assert.Equal(t, uint(8), updated.Images[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDAO_DeleteOwned_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewProductDAO(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE products.vendor_id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := d.DeleteOwned(context.Background(), 8, 3)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDAO_Search_EscapesPattern(t *testing.T) {
	db, mock := newMockDB(t)
	d := NewProductDAO(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" JOIN vendors`).
		WithArgs(`%50\%\_off%`, `%50\%\_off%`, pq.StringArray{"50%_OFF"}, `%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := d.Search(context.Background(), "50%_off", []string{"50%_OFF"}, 0, 12)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
