package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/notify"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/internal/sweeper"
)

func newFlowerTestHandler(t *testing.T) (*FlowerHandler, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	dispatcher := notify.NewDispatcher(&notify.LogSender{Log: zap.NewNop()}, zap.NewNop(), 4)
	t.Cleanup(dispatcher.Close)
	sw := sweeper.New(st, time.Hour, zap.NewNop())
	return NewFlowerHandler(st, sw, dispatcher), st
}

func doJSON(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateBatch_ZeroQuantityCreatedAsSold(t *testing.T) {
	t.Parallel()

	h, _ := newFlowerTestHandler(t)
	e := echo.New()

	c, rec := doJSON(e, http.MethodPost, "/api/flowers",
		`{"name":"Roses","description":"red","price":10,"quantity":0}`)
	if err := h.CreateBatch(c); err != nil {
		t.Fatalf("CreateBatch error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var batch model.FlowerBatch
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if batch.Status != model.BatchStatusSold || batch.SoldAt == nil {
		t.Fatalf("zero quantity batch not marked sold: %+v", batch)
	}
}

func TestCreateBatch_RejectsNegativeQuantity(t *testing.T) {
	t.Parallel()

	h, _ := newFlowerTestHandler(t)
	e := echo.New()

	c, rec := doJSON(e, http.MethodPost, "/api/flowers",
		`{"name":"Roses","price":10,"quantity":-1}`)
	if err := h.CreateBatch(c); err != nil {
		t.Fatalf("CreateBatch error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSell_InsufficientStockReportsShortfall(t *testing.T) {
	t.Parallel()

	h, st := newFlowerTestHandler(t)
	e := echo.New()

	batch := model.NewFlowerBatch("Roses", "", 10, 4, "", time.Now().UTC())
	if err := st.AddBatch(context.Background(), batch); err != nil {
		t.Fatalf("AddBatch error: %v", err)
	}

	c, rec := doJSON(e, http.MethodPatch, "/", `{"quantity":6}`)
	c.SetPath("/api/flowers/:id/sell")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(batch.ID)))

	if err := h.Sell(c); err != nil {
		t.Fatalf("Sell error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusConflict, rec.Body.String())
	}

	var body struct {
		BatchName string `json:"batch_name"`
		Available int    `json:"available"`
		Requested int    `json:"requested"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.BatchName != "Roses" || body.Available != 4 || body.Requested != 6 {
		t.Fatalf("unexpected conflict body: %+v", body)
	}
}

func TestListBatches_RejectsNegativeSkip(t *testing.T) {
	t.Parallel()

	h, st := newFlowerTestHandler(t)
	e := echo.New()

	batch := model.NewFlowerBatch("Roses", "", 10, 4, "", time.Now().UTC())
	if err := st.AddBatch(context.Background(), batch); err != nil {
		t.Fatalf("AddBatch error: %v", err)
	}

	c, rec := doJSON(e, http.MethodGet, "/api/flowers?skip=-1", "")
	if err := h.ListBatches(c); err != nil {
		t.Fatalf("ListBatches error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestGetBatch_NotFound(t *testing.T) {
	t.Parallel()

	h, _ := newFlowerTestHandler(t)
	e := echo.New()

	c, rec := doJSON(e, http.MethodGet, "/", "")
	c.SetPath("/api/flowers/:id")
	c.SetParamNames("id")
	c.SetParamValues("999")

	if err := h.GetBatch(c); err != nil {
		t.Fatalf("GetBatch error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCleanup_ReportsDeletedCount(t *testing.T) {
	t.Parallel()

	h, st := newFlowerTestHandler(t)
	e := echo.New()

	old := model.NewFlowerBatch("old", "", 1, 1, "", time.Now().UTC().Add(-30*24*time.Hour))
	if err := st.AddBatch(context.Background(), old); err != nil {
		t.Fatalf("AddBatch error: %v", err)
	}

	c, rec := doJSON(e, http.MethodPost, "/api/cleanup", "")
	if err := h.Cleanup(c); err != nil {
		t.Fatalf("Cleanup error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", body.Deleted)
	}
}
