package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/stockflow/backend/internal/application/catalog"
	inventoryapp "github.com/stockflow/backend/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_Register(t *testing.T) {
	app := newTestApp(t, inventoryapp.DefaultOptions())

	t.Run("new product is created", func(t *testing.T) {
		p := app.registerProduct("Hex bolt M8", "1000001", "1000002", "1000003")
		assert.Equal(t, int64(50), p.TotalPiecesPerBox)
		assert.Equal(t, "1000002", p.PackBarcode)
	})

	t.Run("duplicate barcode is reported and not saved", func(t *testing.T) {
		w, resp := app.do(http.MethodPost, "/api/v1/products", map[string]any{
			"name":            "Hex bolt M8 (copy)",
			"piece_barcode":   "2000001",
			"pack_barcode":    "1000002",
			"pieces_per_pack": 10,
			"packs_per_box":   5,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result catalogapp.RegistrationResult
		data(t, resp, &result)
		assert.Equal(t, catalogapp.RegistrationDuplicate, result.Kind)
		assert.Nil(t, result.Product)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, "1000002", result.Conflicts[0].Barcode)
		assert.Equal(t, "Hex bolt M8", result.Conflicts[0].ProductName)
		assert.Equal(t, "pack", result.Conflicts[0].UnitType.String())

		_, list := app.do(http.MethodGet, "/api/v1/products", nil)
		require.NotNil(t, list.Meta)
		assert.Equal(t, int64(1), list.Meta.Total)
	})

	t.Run("force saves despite conflicts", func(t *testing.T) {
		w, resp := app.do(http.MethodPost, "/api/v1/products?force=true", map[string]any{
			"name":            "Hex bolt M8 (forced)",
			"box_barcode":     "1000003",
			"pieces_per_pack": 10,
			"packs_per_box":   5,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var result catalogapp.RegistrationResult
		data(t, resp, &result)
		assert.Equal(t, catalogapp.RegistrationNew, result.Kind)
		assert.True(t, result.Forced)
		assert.Len(t, result.Conflicts, 1)
		require.NotNil(t, result.Product)
	})

	t.Run("invalid factors are rejected by binding", func(t *testing.T) {
		w, resp := app.do(http.MethodPost, "/api/v1/products", map[string]any{
			"name":            "Washer",
			"piece_barcode":   "3000001",
			"pieces_per_pack": 0,
			"packs_per_box":   5,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("a product needs at least one barcode", func(t *testing.T) {
		w, resp := app.do(http.MethodPost, "/api/v1/products", map[string]any{
			"name":            "Washer",
			"pieces_per_pack": 10,
			"packs_per_box":   5,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w, resp := app.do(http.MethodPost, "/api/v1/products", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_JSON", resp.Error.Code)
	})
}

func TestProductHandler_GetAndUpdate(t *testing.T) {
	app := newTestApp(t, inventoryapp.DefaultOptions())
	p := app.registerProduct("Cable tie", "4000001", "4000002", "")

	t.Run("get by id", func(t *testing.T) {
		w, resp := app.do(http.MethodGet, "/api/v1/products/"+p.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got catalogapp.ProductResponse
		data(t, resp, &got)
		assert.Equal(t, "Cable tie", got.Name)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		w, resp := app.do(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		w, resp := app.do(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "id", resp.Error.Details["field"])
	})

	t.Run("update packaging", func(t *testing.T) {
		w, resp := app.do(http.MethodPut, "/api/v1/products/"+p.ID.String()+"/packaging", map[string]any{
			"pieces_per_pack": 12,
			"packs_per_box":   4,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductResponse
		data(t, resp, &got)
		assert.Equal(t, int64(48), got.TotalPiecesPerBox)
	})

	t.Run("update price", func(t *testing.T) {
		w, resp := app.do(http.MethodPut, "/api/v1/products/"+p.ID.String()+"/price", map[string]any{
			"base_price": "1.25",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got catalogapp.ProductResponse
		data(t, resp, &got)
		assert.Equal(t, "1.25", got.BasePrice.String())

		w, _ = app.do(http.MethodPut, "/api/v1/products/"+p.ID.String()+"/price", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update barcodes reports conflicts", func(t *testing.T) {
		other := app.registerProduct("Zip tie", "5000001", "", "")

		w, resp := app.do(http.MethodPut, "/api/v1/products/"+other.ID.String()+"/barcodes", map[string]any{
			"piece_barcode": "5000001",
			"box_barcode":   "4000002",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result catalogapp.RegistrationResult
		data(t, resp, &result)
		assert.Equal(t, catalogapp.RegistrationDuplicate, result.Kind)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, p.ID, result.Conflicts[0].ProductID)
	})

	t.Run("list searches by barcode", func(t *testing.T) {
		w, resp := app.do(http.MethodGet, "/api/v1/products?search=4000001&page_size=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list []catalogapp.ProductResponse
		data(t, resp, &list)
		require.Len(t, list, 1)
		assert.Equal(t, p.ID, list[0].ID)
		assert.Equal(t, 5, resp.Meta.PageSize)
	})

	t.Run("list rejects oversized pages", func(t *testing.T) {
		w, _ := app.do(http.MethodGet, "/api/v1/products?page_size=500", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
