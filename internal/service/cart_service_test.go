package service

import (
	"path/filepath"
	"testing"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "pos_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Operator{}, &model.Category{}, &model.Product{},
		&model.Sale{}, &model.SaleItem{}, &model.Terminal{},
	))
	return db
}

func newTestCart(t *testing.T) (CartService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	saleRepo := repository.NewSaleRepo(db)
	productRepo := repository.NewProductRepo(db)
	return NewCartService(saleRepo, productRepo, db, nil), db
}

func seedOperator(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	op := &model.Operator{Name: name, IsActive: true}
	require.NoError(t, op.SetPIN("1234"))
	require.NoError(t, db.Create(op).Error)
	return op.ID
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) uuid.UUID {
	t.Helper()
	p := &model.Product{Name: name, Price: price, Stock: 10, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p.ID
}

// requireConsistent asserts the header total equals the sum of the line
// subtotals, the invariant every mutation must preserve
func requireConsistent(t *testing.T, db *gorm.DB, saleID uuid.UUID) {
	t.Helper()
	var sale model.Sale
	require.NoError(t, db.First(&sale, "id = ?", saleID).Error)

	var sum float64
	require.NoError(t, db.Model(&model.SaleItem{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&sum).Error)

	require.InDelta(t, sum, sale.TotalAmount, 0.001)
}

func draftCount(t *testing.T, db *gorm.DB, operatorID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Sale{}).
		Where("operator_id = ? AND status = ?", operatorID, model.SaleDraft).
		Count(&count).Error)
	return count
}

func TestResolveDraftSale_CreatesThenReuses(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")

	first, err := svc.ResolveDraftSale(opID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first)

	second, err := svc.ResolveDraftSale(opID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "resolve should reuse the existing draft")

	assert.EqualValues(t, 1, draftCount(t, db, opID))
}

func TestAddProduct_CreatesDraftWithSnapshotPrice(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	prodID := seedProduct(t, db, "Latte", 4.99)

	sale, err := svc.AddProduct(opID, prodID)
	require.NoError(t, err)

	require.Len(t, sale.Items, 1)
	assert.Equal(t, 1, sale.Items[0].Quantity)
	assert.InDelta(t, 4.99, sale.Items[0].UnitPrice, 0.001)
	assert.InDelta(t, 4.99, sale.Items[0].Subtotal, 0.001)
	assert.InDelta(t, 4.99, sale.TotalAmount, 0.001)
	requireConsistent(t, db, sale.ID)

	// A later price change must not touch the snapshot
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", prodID).Update("price", 7.00).Error)
	sale, err = svc.AddProduct(opID, prodID)
	require.NoError(t, err)
	assert.InDelta(t, 4.99, sale.Items[0].UnitPrice, 0.001)
}

func TestAddProduct_SameProductIncrementsInsteadOfDuplicating(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	prodID := seedProduct(t, db, "Latte", 4.99)

	_, err := svc.AddProduct(opID, prodID)
	require.NoError(t, err)
	sale, err := svc.AddProduct(opID, prodID)
	require.NoError(t, err)

	require.Len(t, sale.Items, 1, "same product must not create a duplicate line")
	assert.Equal(t, 2, sale.Items[0].Quantity)
	assert.InDelta(t, 9.98, sale.Items[0].Subtotal, 0.001)
	assert.InDelta(t, 9.98, sale.TotalAmount, 0.001)
	requireConsistent(t, db, sale.ID)
}

func TestAddProduct_UnknownProduct(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")

	_, err := svc.AddProduct(opID, uuid.New())
	require.ErrorIs(t, err, ErrProductNotFound)

	// The failed unit must roll back the draft it resolved
	assert.EqualValues(t, 0, draftCount(t, db, opID))
}

func TestSetQuantity_UpdatesLineAndTotal(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	prodID := seedProduct(t, db, "Latte", 4.99)

	sale, err := svc.AddProduct(opID, prodID)
	require.NoError(t, err)

	sale, err = svc.SetQuantity(sale.ID, prodID, 3)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 3, sale.Items[0].Quantity)
	assert.InDelta(t, 14.97, sale.TotalAmount, 0.001)
	requireConsistent(t, db, sale.ID)
}

func TestSetQuantity_ZeroOrNegativeRemovesLine(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	latte := seedProduct(t, db, "Latte", 4.99)
	tea := seedProduct(t, db, "Iced Tea", 3.25)

	sale, err := svc.AddProduct(opID, latte)
	require.NoError(t, err)
	_, err = svc.AddProduct(opID, tea)
	require.NoError(t, err)

	sale, err = svc.SetQuantity(sale.ID, latte, 0)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, tea, sale.Items[0].ProductID)
	assert.InDelta(t, 3.25, sale.TotalAmount, 0.001)
	requireConsistent(t, db, sale.ID)

	sale, err = svc.SetQuantity(sale.ID, tea, -2)
	require.NoError(t, err)
	assert.Empty(t, sale.Items)
	assert.InDelta(t, 0, sale.TotalAmount, 0.001)
}

func TestSetQuantity_NoMatchingLineIsNoOp(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	prodID := seedProduct(t, db, "Latte", 4.99)

	sale, err := svc.AddProduct(opID, prodID)
	require.NoError(t, err)

	got, err := svc.SetQuantity(sale.ID, uuid.New(), 5)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.InDelta(t, 4.99, got.TotalAmount, 0.001)
}

func TestRemoveItem_RecomputesTotal(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	latte := seedProduct(t, db, "Latte", 4.99)
	tea := seedProduct(t, db, "Iced Tea", 3.25)

	sale, err := svc.AddProduct(opID, latte)
	require.NoError(t, err)
	_, err = svc.AddProduct(opID, tea)
	require.NoError(t, err)

	sale, err = svc.RemoveItem(sale.ID, latte)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.InDelta(t, 3.25, sale.TotalAmount, 0.001)
	requireConsistent(t, db, sale.ID)

	// Removing an absent product is a no-op
	sale, err = svc.RemoveItem(sale.ID, latte)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
}

func TestClearCart_DeletesItemsAndHeader(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	latte := seedProduct(t, db, "Latte", 4.99)
	tea := seedProduct(t, db, "Iced Tea", 3.25)

	sale, err := svc.AddProduct(opID, latte)
	require.NoError(t, err)
	_, err = svc.AddProduct(opID, tea)
	require.NoError(t, err)
	clearedID := sale.ID

	require.NoError(t, svc.ClearCart(clearedID))

	var itemCount int64
	require.NoError(t, db.Model(&model.SaleItem{}).Where("sale_id = ?", clearedID).Count(&itemCount).Error)
	assert.EqualValues(t, 0, itemCount)
	assert.EqualValues(t, 0, draftCount(t, db, opID))

	// Next add starts a fresh sale with a distinct id
	fresh, err := svc.AddProduct(opID, latte)
	require.NoError(t, err)
	assert.NotEqual(t, clearedID, fresh.ID)
}

func TestCompleteSale_EmptyCartIsNoOp(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")

	saleID, err := svc.ResolveDraftSale(opID)
	require.NoError(t, err)

	completed, err := svc.CompleteSale(opID, saleID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, completed)

	// The draft stays a draft
	var sale model.Sale
	require.NoError(t, db.First(&sale, "id = ?", saleID).Error)
	assert.Equal(t, model.SaleDraft, sale.Status)
}

func TestCompleteSale_MissingPreconditionsAreNoOps(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	otherID := seedOperator(t, db, "Marco")
	prodID := seedProduct(t, db, "Latte", 4.99)

	sale, err := svc.AddProduct(opID, prodID)
	require.NoError(t, err)

	completed, err := svc.CompleteSale(uuid.Nil, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, completed)

	completed, err = svc.CompleteSale(opID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, completed)

	// A different operator cannot complete someone else's draft
	completed, err = svc.CompleteSale(otherID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, completed)

	// And a completed sale cannot be completed again
	completed, err = svc.CompleteSale(opID, sale.ID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, completed)

	completed, err = svc.CompleteSale(opID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, completed)
}

// The checkout walkthrough from the demo script: Jane rings up two lattes
// and an iced tea, drops back to one latte, then completes the sale.
func TestCheckoutScenario(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")
	productA := seedProduct(t, db, "Latte", 4.99)
	productB := seedProduct(t, db, "Espresso", 2.49)

	sale, err := svc.AddProduct(opID, productA)
	require.NoError(t, err)
	assert.InDelta(t, 4.99, sale.TotalAmount, 0.001)

	sale, err = svc.AddProduct(opID, productA)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 2, sale.Items[0].Quantity)
	assert.InDelta(t, 9.98, sale.TotalAmount, 0.001)

	sale, err = svc.AddProduct(opID, productB)
	require.NoError(t, err)
	assert.InDelta(t, 12.47, sale.TotalAmount, 0.001)

	sale, err = svc.SetQuantity(sale.ID, productA, 1)
	require.NoError(t, err)
	assert.InDelta(t, 7.47, sale.TotalAmount, 0.001)
	requireConsistent(t, db, sale.ID)

	completedID, err := svc.CompleteSale(opID, sale.ID)
	require.NoError(t, err)
	require.Equal(t, sale.ID, completedID)

	var completed model.Sale
	require.NoError(t, db.First(&completed, "id = ?", completedID).Error)
	assert.Equal(t, model.SaleCompleted, completed.Status)
	assert.InDelta(t, 7.47, completed.TotalAmount, 0.001)
	require.NotNil(t, completed.CompletedAt)
	assert.False(t, completed.Synced, "a fresh completion must be queued for upload")

	assert.EqualValues(t, 0, draftCount(t, db, opID), "operator has no draft after checkout")
}

func TestGetCart_NilWithoutDraft(t *testing.T) {
	svc, db := newTestCart(t)
	opID := seedOperator(t, db, "Jane")

	sale, err := svc.GetCart(opID)
	require.NoError(t, err)
	assert.Nil(t, sale)
}
