package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dealership_api/internal/cache"
	"dealership_api/internal/sales"
	"dealership_api/internal/stats"
	"dealership_api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type response struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// initRoutesTests levanta el router sobre sqlite en memoria y un mock de la API de usuarios.
func initRoutesTests(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := zaptest.NewLogger(t)

	userMockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Path[len("/users/"):]
		switch userID {
		case "user123":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"id": "user123", "name": "Test User 123"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("User not found"))
		}
	}))
	t.Cleanup(userMockServer.Close)

	db, err := storage.Open("sqlite", "file:api_"+uuid.NewString()+"?mode=memory&cache=shared", storage.PoolOptions{MaxOpenConns: 1}, logger)
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := storage.New(db)

	users := sales.NewUserServiceDirectory(userMockServer.URL+"/users", 2*time.Second, logger)
	t.Cleanup(func() { users.Close() })

	InitRoutes(router, Services{
		Sales:     sales.NewService(store, users, logger),
		Inventory: sales.NewInventoryService(store, logger),
		Stats:     stats.NewService(store, cache.NewMemory(), logger, stats.Options{}),
	}, logger)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (int, response) {
	t.Helper()
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w.Code, resp
}

func seedInventory(t *testing.T, router *gin.Engine) {
	t.Helper()
	code, _ := doJSON(t, router, http.MethodPost, "/clients", map[string]any{
		"national_id": "12345678",
		"first_name":  "Ana",
		"last_name":   "Gómez",
		"email":       "ana@example.com",
	})
	require.Equal(t, http.StatusCreated, code)

	code, _ = doJSON(t, router, http.MethodPost, "/vehicles", map[string]any{
		"plate":           " ab123cd ",
		"brand":           "Toyota",
		"model":           "Corolla",
		"year":            2020,
		"acquisition_ars": "1000000",
		"acquisition_usd": "2000",
	})
	require.Equal(t, http.StatusCreated, code)

	for _, e := range []map[string]any{
		{"amount_ars": "30000", "amount_usd": "60", "category": "repairs"},
		{"amount_ars": "20000", "amount_usd": "40", "category": "paperwork"},
	} {
		code, _ = doJSON(t, router, http.MethodPost, "/vehicles/ab123cd/expenses", e)
		require.Equal(t, http.StatusCreated, code)
	}
}

// TestSalesHappyPath_FullFlow prueba el flujo completo de alta de venta, consulta y estadísticas.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	router := initRoutesTests(t)
	seedInventory(t, router)

	var saleID string

	t.Run("POST_CreateSale", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
			"client_national_id": "12345678",
			"vehicle_plate":      "ab123cd",
			"salesperson_id":     "user123",
			"price_ars":          "1500000",
			"price_usd":          "3000",
			"provenance":         "showroom",
		})
		require.Equal(t, http.StatusCreated, code, "Expected HTTP 201 Created status for successful sale creation")
		assert.True(t, resp.Success)

		var result sales.SaleResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.NotEmpty(t, result.Sale.ID, "Expected sale ID to be generated")
		assert.True(t, result.Profit.ProfitARS.Equal(decimal.NewFromInt(450000)), "got %s", result.Profit.ProfitARS)
		assert.True(t, result.Profit.ProfitUSD.Equal(decimal.NewFromInt(900)), "got %s", result.Profit.ProfitUSD)
		assert.True(t, result.Profit.PercentARS.Equal(decimal.NewFromInt(45)), "got %s", result.Profit.PercentARS)
		saleID = result.Sale.ID
	})

	if saleID == "" {
		t.Fatal("Sale ID was not successfully generated in POST_CreateSale step.")
	}

	t.Run("POST_CreateSale_AlreadySold", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodPost, "/sales", map[string]any{
			"client_national_id": "12345678",
			"vehicle_plate":      "AB123CD",
			"salesperson_id":     "user123",
			"price_ars":          "1",
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.False(t, resp.Success)
	})

	t.Run("GET_Sale", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodGet, "/sales/"+saleID, nil)
		require.Equal(t, http.StatusOK, code)
		var sale sales.Sale
		require.NoError(t, json.Unmarshal(resp.Data, &sale))
		assert.Equal(t, "showroom", sale.Provenance)
		assert.Equal(t, "user123", sale.SalespersonID)
	})

	t.Run("GET_SearchSaleByClient", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodGet, "/sales?client=12345678", nil)
		require.Equal(t, http.StatusOK, code)

		var data struct {
			Results  []sales.Sale        `json:"results"`
			Metadata sales.SalesMetadata `json:"metadata"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.Len(t, data.Results, 1)
		assert.Equal(t, saleID, data.Results[0].ID)
		assert.Equal(t, 1, data.Metadata.Quantity)
		assert.True(t, data.Metadata.TotalProfitARS.Equal(decimal.NewFromInt(450000)))
	})

	t.Run("GET_ClientPromoted", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodGet, "/clients/12345678", nil)
		require.Equal(t, http.StatusOK, code)
		var c sales.Client
		require.NoError(t, json.Unmarshal(resp.Data, &c))
		assert.Equal(t, sales.ClientBuyer, c.Classification)
	})

	t.Run("GET_VehicleSold", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodGet, "/vehicles/ab123cd", nil)
		require.Equal(t, http.StatusOK, code)
		var v sales.Vehicle
		require.NoError(t, json.Unmarshal(resp.Data, &v))
		assert.Equal(t, sales.VehicleSold, v.State)
	})

	t.Run("PATCH_SoldVehicle", func(t *testing.T) {
		code, _ := doJSON(t, router, http.MethodPatch, "/vehicles/AB123CD", map[string]string{"state": "available"})
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("GET_Stats", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodGet, "/stats/sales", nil)
		require.Equal(t, http.StatusOK, code)
		var snap stats.Snapshot
		require.NoError(t, json.Unmarshal(resp.Data, &snap))
		assert.Equal(t, int64(1), snap.Count)
		assert.Equal(t, stats.Positive, snap.Trend)

		code, resp = doJSON(t, router, http.MethodGet, "/stats/profit/total", nil)
		require.Equal(t, http.StatusOK, code)
		var total stats.ProfitTotal
		require.NoError(t, json.Unmarshal(resp.Data, &total))
		assert.Equal(t, time.Now().UTC().Year(), total.Year)
		assert.True(t, total.Total.Equal(decimal.NewFromInt(450000)))

		code, resp = doJSON(t, router, http.MethodGet, "/stats/history/combined", nil)
		require.Equal(t, http.StatusOK, code)
		var points []stats.RollupPoint
		require.NoError(t, json.Unmarshal(resp.Data, &points))
		require.Len(t, points, 12)
		last := points[len(points)-1]
		assert.Equal(t, stats.PeriodOf(time.Now()).Key(), last.Period)
		assert.True(t, last.Sales.Equal(decimal.NewFromInt(1500000)))
		assert.True(t, last.VehicleExpenses.Equal(decimal.NewFromInt(50000)))
	})
}

func TestCreateSale_Errors(t *testing.T) {
	router := initRoutesTests(t)
	seedInventory(t, router)

	base := func() map[string]any {
		return map[string]any{
			"client_national_id": "12345678",
			"vehicle_plate":      "AB123CD",
			"salesperson_id":     "user123",
			"price_ars":          "1500000",
		}
	}

	t.Run("missing fields", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodPost, "/sales", map[string]any{"price_ars": "10"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, resp.Errors, "client_national_id")
		assert.Contains(t, resp.Errors, "vehicle_plate")
		assert.Contains(t, resp.Errors, "salesperson_id")
	})

	t.Run("non positive price", func(t *testing.T) {
		body := base()
		body["price_ars"] = "0"
		code, resp := doJSON(t, router, http.MethodPost, "/sales", body)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, resp.Errors, "price_ars")
	})

	t.Run("malformed plate", func(t *testing.T) {
		body := base()
		body["vehicle_plate"] = "A!"
		code, resp := doJSON(t, router, http.MethodPost, "/sales", body)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, []string{"must be a valid plate"}, resp.Errors["vehicle_plate"])
	})

	t.Run("unknown client", func(t *testing.T) {
		body := base()
		body["client_national_id"] = "99999999"
		code, resp := doJSON(t, router, http.MethodPost, "/sales", body)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Client with national ID 99999999 not found", resp.Message)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		body := base()
		body["vehicle_plate"] = "ZZ999ZZ"
		code, resp := doJSON(t, router, http.MethodPost, "/sales", body)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Vehicle with plate ZZ999ZZ not found", resp.Message)
	})

	t.Run("unknown salesperson", func(t *testing.T) {
		body := base()
		body["salesperson_id"] = "non-existent-user-123"
		code, resp := doJSON(t, router, http.MethodPost, "/sales", body)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "salesperson not found", resp.Message)
	})

	t.Run("invalid payload", func(t *testing.T) {
		code, resp := doJSON(t, router, http.MethodPost, "/sales", `{"client_national_id":`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.False(t, resp.Success)
	})

	// Nothing above may have sold the vehicle.
	code, resp := doJSON(t, router, http.MethodGet, "/vehicles/AB123CD", nil)
	require.Equal(t, http.StatusOK, code)
	var v sales.Vehicle
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, sales.VehicleAvailable, v.State)
}

func TestInventoryEndpoints(t *testing.T) {
	router := initRoutesTests(t)
	seedInventory(t, router)

	code, _ := doJSON(t, router, http.MethodPost, "/vehicles", map[string]any{
		"plate": "AB123CD", "brand": "Ford", "model": "Ka",
	})
	assert.Equal(t, http.StatusInternalServerError, code, "duplicate plate is a persistence failure")

	code, resp := doJSON(t, router, http.MethodPost, "/clients", map[string]any{
		"national_id": "12ab", "first_name": "X", "last_name": "Y",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Errors, "national_id")

	code, resp = doJSON(t, router, http.MethodPatch, "/vehicles/AB123CD", map[string]string{"state": "flying"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Errors, "state")

	code, resp = doJSON(t, router, http.MethodPatch, "/vehicles/AB123CD", map[string]string{"state": "no disponible"})
	require.Equal(t, http.StatusOK, code)
	var v sales.Vehicle
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	assert.Equal(t, sales.VehicleUnavailable, v.State)

	code, resp = doJSON(t, router, http.MethodGet, "/vehicles?state=unavailable", nil)
	require.Equal(t, http.StatusOK, code)
	var list []sales.Vehicle
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "AB123CD", list[0].Plate)

	code, _ = doJSON(t, router, http.MethodGet, "/vehicles?state=flying", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = doJSON(t, router, http.MethodGet, "/clients/00000000", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = doJSON(t, router, http.MethodPost, "/expenses", map[string]any{
		"category": "rent", "amount": "250000", "fund": "general",
	})
	require.Equal(t, http.StatusCreated, code)
	var e sales.OperatingExpense
	require.NoError(t, json.Unmarshal(resp.Data, &e))
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(250000)))

	code, resp = doJSON(t, router, http.MethodGet, "/stats/operating-expenses", nil)
	require.Equal(t, http.StatusOK, code)
	var snap stats.Snapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	require.NotNil(t, snap.Amount)
	assert.True(t, snap.Amount.Equal(decimal.NewFromInt(250000)))
}

func TestSearchSales_InvalidQuery(t *testing.T) {
	router := initRoutesTests(t)

	code, resp := doJSON(t, router, http.MethodGet, "/sales?month=13", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Errors, "month")

	code, resp = doJSON(t, router, http.MethodGet, "/sales?year=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, resp.Errors, "year")

	code, _ = doJSON(t, router, http.MethodGet, "/sales?client=11111111", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, router, http.MethodGet, "/sales/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPing(t *testing.T) {
	router := initRoutesTests(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
