package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/logistica-api/internal/application/auth"
	"github.com/jhoicas/logistica-api/internal/application/authority"
	"github.com/jhoicas/logistica-api/internal/application/dto"
	"github.com/jhoicas/logistica-api/internal/application/inventory"
	"github.com/jhoicas/logistica-api/internal/application/ports"
	"github.com/jhoicas/logistica-api/internal/application/trade"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
	"github.com/jhoicas/logistica-api/internal/infrastructure/idempotency"
	"github.com/jhoicas/logistica-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/logistica-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	ownerSecret    = "owner-secret-123"
	customerSecret = "cliente-secret-123"
	productPath    = "/api/products/Assignment%206"
)

type observation struct {
	method string
	status int
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) ObserveHTTP(method, _ string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{method: method, status: status})
}

func (r *recordingObserver) seen(method string, status int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.obs {
		if o.method == method && o.status == status {
			return true
		}
	}
	return false
}

type stubWaybill struct{}

func (stubWaybill) GenerateWaybill(_ context.Context, t *entity.Trade, history []*entity.TradeTransition) ([]byte, error) {
	return []byte("%PDF-stub " + t.ID), nil
}

// busyStore simula otra petición en curso con la misma llave.
type busyStore struct{}

func (busyStore) Acquire(context.Context, string, time.Duration) (*ports.IdempotencyRecord, bool, error) {
	return nil, false, nil
}
func (busyStore) Complete(context.Context, string, ports.IdempotencyRecord, time.Duration) error {
	return nil
}
func (busyStore) Release(context.Context, string) error { return nil }

type apiFixture struct {
	app      *fiber.App
	owner    string
	observer *recordingObserver
}

func newAPI(t *testing.T, idem ports.IdempotencyStore) *apiFixture {
	t.Helper()
	gate, err := authority.NewGate(authority.Config{AuthorityID: "owner"})
	require.NoError(t, err)

	store := memory.NewStore()
	ledger := inventory.NewLedger(store, memory.NewProductRepository(store), memory.NewStockMovementRepository(store), gate, zerolog.Nop())
	registry := trade.NewRegistry(store, memory.NewTradeRepository(store), ledger, gate, nil, nil, zerolog.Nop())
	authUC := auth.NewAuthUseCase(memory.NewPartyRepository(store), gate, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	}, zerolog.Nop())
	require.NoError(t, authUC.SeedAuthority(context.Background(), ownerSecret))

	obs := &recordingObserver{}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:      ledger,
		Registry:    registry,
		AuthUC:      authUC,
		Idempotency: idem,
		Waybill:     stubWaybill{},
		Metrics:     obs,
		JWTSecret:   testJWTSecret,
		Log:         zerolog.Nop(),
	})
	f := &apiFixture{app: app, observer: obs}
	f.owner = f.login(t, "owner", ownerSecret)
	return f
}

func (f *apiFixture) login(t *testing.T, partyID, secret string) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{PartyID: partyID, Secret: secret})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

// do lanza la petición; headers se pasan en pares clave, valor.
func (f *apiFixture) do(t *testing.T, method, path, token string, payload any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

// seedProduct registra "Assignment 6" (precio 1, 10..30 °C) con el stock indicado.
func (f *apiFixture) seedProduct(t *testing.T, stock int64) {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/products", f.owner, dto.CreateProductRequest{
		Name: "Assignment 6", UnitPrice: decimal.NewFromInt(1), MinTemperature: 10, MaxTemperature: 30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	resp, body = f.do(t, http.MethodPost, productPath+"/stock", f.owner, dto.AddStockRequest{Amount: stock})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func (f *apiFixture) stock(t *testing.T) int64 {
	t.Helper()
	resp, body := f.do(t, http.MethodGet, productPath+"/stock", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Quantity
}

func decodeTrade(t *testing.T, body []byte) dto.TradeResponse {
	t.Helper()
	var out dto.TradeResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out.Code
}

var fiveUnits = dto.CreateTradeRequest{Customer: "cliente-1", ProductName: "Assignment 6", Quantity: 5}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_LoginCredencialesInvalidas(t *testing.T) {
	f := newAPI(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{PartyID: "owner", Secret: "incorrecto"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))

	resp, body = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{PartyID: "nadie", Secret: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, body))

	resp, body = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

func TestAPI_RutaProtegidaSinToken(t *testing.T) {
	f := newAPI(t, nil)
	resp, body := f.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, body))
}

func TestAPI_ClienteNoPuedeOperar(t *testing.T) {
	f := newAPI(t, nil)
	f.seedProduct(t, 100)

	resp, body := f.do(t, http.MethodPost, "/api/parties", f.owner, dto.CreatePartyRequest{ID: "cliente-1", Secret: customerSecret})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	resp, body = f.do(t, http.MethodPost, "/api/parties", f.owner, dto.CreatePartyRequest{ID: "cliente-1", Secret: customerSecret})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PARTY_EXISTS", errorCode(t, body))

	customer := f.login(t, "cliente-1", customerSecret)

	resp, body = f.do(t, http.MethodPost, "/api/trades", customer, fiveUnits)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	resp, _ = f.do(t, http.MethodPost, productPath+"/stock", customer, dto.AddStockRequest{Amount: 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/parties", customer, dto.CreatePartyRequest{ID: "cliente-2", Secret: customerSecret})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	// lecturas permitidas, sin mutación
	assert.Equal(t, int64(100), f.stock(t))
	resp, body = f.do(t, http.MethodGet, "/api/trades", customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.TradeListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Items)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y tratos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_EscenarioAssignment6(t *testing.T) {
	f := newAPI(t, nil)
	f.seedProduct(t, 100)

	resp, body := f.do(t, http.MethodPost, "/api/products", f.owner, dto.CreateProductRequest{Name: "Assignment 6"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_EXISTS", errorCode(t, body))

	// sin stock suficiente: 409 con la cantidad disponible
	resp, body = f.do(t, http.MethodPost, "/api/trades", f.owner, dto.CreateTradeRequest{
		Customer: "cliente-1", ProductName: "Assignment 6", Quantity: 100000,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var stockErr dto.InsufficientStockResponse
	require.NoError(t, json.Unmarshal(body, &stockErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", stockErr.Code)
	assert.Equal(t, int64(100), stockErr.Available)
	assert.Equal(t, int64(100000), stockErr.Requested)

	// dry run: calcula sin confirmar
	resp, body = f.do(t, http.MethodPost, "/api/trades?dry_run=true", f.owner, fiveUnits)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	preview := decodeTrade(t, body)
	assert.True(t, preview.DryRun)
	assert.Equal(t, "Created", preview.TransportState)
	assert.True(t, preview.Price.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 10, preview.MinTemperature)
	assert.Equal(t, 30, preview.MaxTemperature)
	assert.Equal(t, int64(100), f.stock(t))
	resp, _ = f.do(t, http.MethodGet, "/api/trades/"+preview.ID, f.owner, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// commit
	resp, body = f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decodeTrade(t, body)
	assert.False(t, created.DryRun)
	assert.Equal(t, int64(95), f.stock(t))

	resp, body = f.do(t, http.MethodGet, "/api/trades/"+created.ID, f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeTrade(t, body)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, created.Price.Equal(got.Price))
	assert.Equal(t, created.TransportState, got.TransportState)

	resp, body = f.do(t, http.MethodPost, "/api/trades/"+created.ID+"/advance", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "InTransit", decodeTrade(t, body).TransportState)

	resp, body = f.do(t, http.MethodPost, "/api/trades/"+created.ID+"/cancel", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Cancel", decodeTrade(t, body).TransportState)

	resp, body = f.do(t, http.MethodPost, "/api/trades/"+created.ID+"/advance", f.owner, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))

	// cancelar no repone stock
	assert.Equal(t, int64(95), f.stock(t))

	resp, body = f.do(t, http.MethodGet, "/api/trades/"+created.ID+"/transitions", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.TradeTransitionResponse
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 3)
	assert.Equal(t, "Idle", history[0].From)
	assert.Equal(t, "Cancel", history[2].To)

	resp, body = f.do(t, http.MethodGet, productPath+"/movements", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs dto.StockMovementListResponse
	require.NoError(t, json.Unmarshal(body, &movs))
	require.Len(t, movs.Items, 2)
	assert.Equal(t, entity.MovementTypeIN, movs.Items[0].Type)
	assert.Equal(t, entity.MovementTypeOUT, movs.Items[1].Type)

	resp, body = f.do(t, http.MethodGet, "/api/trades/"+created.ID+"/waybill", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	assert.True(t, f.observer.seen(http.MethodPost, http.StatusCreated))
	assert.True(t, f.observer.seen(http.MethodPost, http.StatusConflict))
}

// Un trato avanzado conserva id y estado tras peticiones posteriores con rutas de otra longitud.
func TestAPI_TratoAvanzadoSobreviveOtrasPeticiones(t *testing.T) {
	f := newAPI(t, nil)
	f.seedProduct(t, 100)

	resp, body := f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	id := decodeTrade(t, body).ID

	resp, body = f.do(t, http.MethodPost, "/api/trades/"+id+"/advance", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	for _, path := range []string{
		"/api/products",
		productPath + "/movements",
		"/api/trades/xyz",
		"/api/trades/otro-id-de-longitud-distinta-0000000000000000/transitions",
	} {
		f.do(t, http.MethodGet, path, f.owner, nil)
	}
	f.do(t, http.MethodPost, productPath+"/stock", f.owner, dto.AddStockRequest{Amount: 1})

	resp, body = f.do(t, http.MethodGet, "/api/trades", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var list dto.TradeListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, id, list.Items[0].ID)
	assert.Equal(t, "InTransit", list.Items[0].TransportState)

	resp, body = f.do(t, http.MethodGet, "/api/trades/"+id+"/transitions", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var history []dto.TradeTransitionResponse
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "Idle", history[0].From)
	assert.Equal(t, "Created", history[0].To)
	assert.Equal(t, "InTransit", history[1].To)

	resp, body = f.do(t, http.MethodGet, productPath+"/movements", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs dto.StockMovementListResponse
	require.NoError(t, json.Unmarshal(body, &movs))
	require.Len(t, movs.Items, 3)
	assert.Equal(t, entity.MovementTypeIN, movs.Items[2].Type)
	assert.Equal(t, int64(96), f.stock(t))
}

func TestAPI_NoEncontrados(t *testing.T) {
	f := newAPI(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, body))

	resp, body = f.do(t, http.MethodGet, productPath, f.owner, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, body))

	for _, path := range []string{"/api/trades/no-existe", "/api/trades/no-existe/transitions", "/api/trades/no-existe/waybill"} {
		resp, body = f.do(t, http.MethodGet, path, f.owner, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "TRADE_NOT_FOUND", errorCode(t, body), path)
	}
	resp, _ = f.do(t, http.MethodPost, "/api/trades/no-existe/advance", f.owner, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Validacion(t *testing.T) {
	f := newAPI(t, nil)
	f.seedProduct(t, 10)

	cases := map[string]struct {
		path    string
		payload any
		code    string
	}{
		"cantidad cero":       {"/api/trades", dto.CreateTradeRequest{Customer: "c", ProductName: "Assignment 6"}, "VALIDATION"},
		"sin cliente":         {"/api/trades", dto.CreateTradeRequest{ProductName: "Assignment 6", Quantity: 1}, "VALIDATION"},
		"temperatura inversa": {"/api/products", dto.CreateProductRequest{Name: "x", MinTemperature: 5, MaxTemperature: 1}, "VALIDATION"},
		"stock negativo":      {productPath + "/stock", dto.AddStockRequest{Amount: -3}, "VALIDATION"},
		"cuerpo no json":      {"/api/trades", "no-es-un-objeto", "INVALID_BODY"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, tc.path, f.owner, tc.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
	assert.Equal(t, int64(10), f.stock(t))
}

func TestAPI_ListarTratosFiltrados(t *testing.T) {
	f := newAPI(t, nil)
	f.seedProduct(t, 100)

	var ids []string
	for _, customer := range []string{"a", "b", "a"} {
		resp, body := f.do(t, http.MethodPost, "/api/trades", f.owner, dto.CreateTradeRequest{
			Customer: customer, ProductName: "Assignment 6", Quantity: 1,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		ids = append(ids, decodeTrade(t, body).ID)
	}
	resp, _ := f.do(t, http.MethodPost, "/api/trades/"+ids[0]+"/advance", f.owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := func(query string) dto.TradeListResponse {
		resp, body := f.do(t, http.MethodGet, "/api/trades"+query, f.owner, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		var out dto.TradeListResponse
		require.NoError(t, json.Unmarshal(body, &out))
		return out
	}
	assert.Len(t, list("").Items, 3)
	assert.Len(t, list("?customer=a").Items, 2)
	assert.Len(t, list("?state=Created").Items, 2)
	inTransit := list("?state=InTransit&customer=a")
	require.Len(t, inTransit.Items, 1)
	assert.Equal(t, ids[0], inTransit.Items[0].ID)
	page := list("?limit=1&offset=1")
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Page.Limit)

	resp, body := f.do(t, http.MethodGet, "/api/trades?state=Perdido", f.owner, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_IdempotencyKeyRepiteRespuesta(t *testing.T) {
	f := newAPI(t, idempotency.NewMemoryStore())
	f.seedProduct(t, 100)

	resp, first := f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits, apphttp.HeaderIdempotencyKey, "pedido-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(first))
	assert.Empty(t, resp.Header.Get(apphttp.HeaderReplayed))

	resp, second := f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits, apphttp.HeaderIdempotencyKey, "pedido-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(apphttp.HeaderReplayed))
	assert.Equal(t, decodeTrade(t, first).ID, decodeTrade(t, second).ID)
	assert.Equal(t, int64(95), f.stock(t))

	resp, third := f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits, apphttp.HeaderIdempotencyKey, "pedido-2")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEqual(t, decodeTrade(t, first).ID, decodeTrade(t, third).ID)
	assert.Equal(t, int64(90), f.stock(t))

	// sin cabecera no hay deduplicación
	resp, _ = f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(85), f.stock(t))
}

func TestAPI_IdempotencyKeyEnCurso(t *testing.T) {
	f := newAPI(t, busyStore{})
	f.seedProduct(t, 100)

	resp, body := f.do(t, http.MethodPost, "/api/trades", f.owner, fiveUnits, apphttp.HeaderIdempotencyKey, "pedido-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_IN_PROGRESS", errorCode(t, body))
	assert.Equal(t, int64(100), f.stock(t))
}
