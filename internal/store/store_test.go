package store

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateQueryFilterParse(t *testing.T) {
	fq := PaginateQueryFilter{
		Page:         1,
		PageSize:     20,
		Sort:         "-created_at",
		SortSafelist: []string{"created_at", "-created_at"},
	}

	r := httptest.NewRequest("GET", "/v1/admin/orders?page=3&page_size=10&sort=created_at&status=pending", nil)
	require.NoError(t, fq.Parse(r))

	assert.Equal(t, 3, fq.Page)
	assert.Equal(t, 10, fq.Limit())
	assert.Equal(t, 20, fq.Offset())
	assert.Equal(t, "created_at", fq.SortColumn())
	assert.Equal(t, "ASC", fq.SortDirection())
}

func TestPaginateQueryFilterParseRejects(t *testing.T) {
	tests := map[string]string{
		"page":      "/?page=0",
		"page size": "/?page_size=500",
		"sort":      "/?sort=password",
		"not a num": "/?page=abc",
	}

	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			fq := PaginateQueryFilter{Page: 1, PageSize: 20, Sort: "created_at", SortSafelist: []string{"created_at"}}
			assert.Error(t, fq.Parse(httptest.NewRequest("GET", target, nil)))
		})
	}
}

func TestSortColumnPanicsOnUnsafeValue(t *testing.T) {
	fq := PaginateQueryFilter{Sort: "id; DROP TABLE orders", SortSafelist: []string{"created_at"}}
	assert.Panics(t, func() { _ = fq.SortColumn() })
}

func TestCalculateMetadata(t *testing.T) {
	assert.Equal(t, Metadata{}, calculateMetadata(0, 1, 20))
	assert.Equal(t, Metadata{CurrentPage: 2, PageSize: 20, FirstPage: 1, LastPage: 3, TotalRecords: 41}, calculateMetadata(41, 2, 20))
}

func TestOrderItemsOfType(t *testing.T) {
	items := OrderItems{
		{Type: LineOrderItem, Name: "Hoodie"},
		{Type: CouponOrderItem, Name: "SAVE10"},
		{Type: LineOrderItem, Name: "Cap"},
		{Type: TaxOrderItem, Name: "VAT"},
	}

	lines := items.OfType(LineOrderItem)
	require.Len(t, lines, 2)
	assert.Equal(t, "Cap", lines[1].Name)

	assert.Empty(t, items.OfType(ShippingOrderItem))
	assert.NotNil(t, items.OfType(ShippingOrderItem))
}

func TestBillingAddressValueScan(t *testing.T) {
	billing := BillingAddress{Email: "ada@example.com", FirstName: "Ada", Country: "GB"}

	value, err := billing.Value()
	require.NoError(t, err)

	var scanned BillingAddress
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, billing, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, BillingAddress{}, scanned)

	assert.Error(t, scanned.Scan(42))
}
