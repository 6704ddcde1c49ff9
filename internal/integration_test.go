package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salon-queue-backend/config"
	"salon-queue-backend/internal/api"
	"salon-queue-backend/internal/db"
	"salon-queue-backend/internal/store"
)

// TestQueueLifecycle walks one full day-in-the-shop cycle through the HTTP
// surface: catalog setup, registration, calling, payment, reporting.
func TestQueueLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	appStore := store.NewGormStore(testDB)
	serverCfg := &config.ServerConfig{
		Port:            8080,
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	router := api.NewRouter(appStore, serverCfg, nil, nil)

	post := func(path string, body any) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	get := func(path string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// Catalog setup.
	w := post("/api/services", gin.H{"name": "Haircut", "price": 30.0, "duration_minutes": 45})
	require.Equal(t, http.StatusCreated, w.Code)
	var service struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &service))

	// Two walk-ins register.
	w = post("/api/clients", gin.H{"name": "Ana", "service_type_id": service.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	time.Sleep(5 * time.Millisecond)
	w = post("/api/clients", gin.H{"name": "Bruno"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Ana is first in line and gets called.
	w = post("/api/queue/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var called struct {
		Status string `json:"status"`
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &called))
	assert.Equal(t, "ok", called.Status)
	assert.Equal(t, "Ana", called.Client.Name)

	// Bruno is still waiting; Ana is in service.
	w = get("/api/queue")
	require.Equal(t, http.StatusOK, w.Code)
	var queue []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
	require.Len(t, queue, 1)
	assert.Equal(t, "Bruno", queue[0].Name)

	w = get("/api/events/open")
	require.Equal(t, http.StatusOK, w.Code)
	var open []struct {
		Event struct {
			ID int64 `json:"id"`
		} `json:"event"`
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
		Service *struct {
			Name string `json:"name"`
		} `json:"service"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	require.Len(t, open, 1)
	assert.Equal(t, "Ana", open[0].Client.Name)
	require.NotNil(t, open[0].Service)
	assert.Equal(t, "Haircut", open[0].Service.Name)

	// Ana pays and leaves.
	w = post("/api/events/1/finish", gin.H{"amount_paid": 30.0})
	require.Equal(t, http.StatusOK, w.Code)

	// Reporting reflects the finished episode.
	w = get("/api/metrics/totals")
	require.Equal(t, http.StatusOK, w.Code)
	var totals struct {
		TotalRevenue  float64 `json:"total_revenue"`
		FinishedCount int64   `json:"finished_count"`
		AverageTicket float64 `json:"average_ticket"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
	assert.Equal(t, 30.0, totals.TotalRevenue)
	assert.EqualValues(t, 1, totals.FinishedCount)
	assert.Equal(t, 30.0, totals.AverageTicket)

	w = get("/api/metrics/daily?days=7")
	require.Equal(t, http.StatusOK, w.Code)
	var daily []struct {
		Day     string  `json:"day"`
		Count   int64   `json:"count"`
		Revenue float64 `json:"revenue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &daily))
	require.Len(t, daily, 1)
	assert.EqualValues(t, 1, daily[0].Count)
	assert.Equal(t, 30.0, daily[0].Revenue)

	// Bruno gets called, the queue drains.
	w = post("/api/queue/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &called))
	assert.Equal(t, "Bruno", called.Client.Name)

	w = post("/api/queue/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"empty"}`, w.Body.String())
}
