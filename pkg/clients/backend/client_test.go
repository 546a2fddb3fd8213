package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pos/internal/config"
	"github.com/mamadbah2/pos/internal/domain/models"
	"github.com/mamadbah2/pos/internal/repository/memory"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*APIClient, *memory.TokenStore, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	tokens := memory.NewTokenStore()
	client := NewClient(config.BackendConfig{BaseURL: server.URL + "/api/", Timeout: 2 * time.Second}, tokens, nil)
	return client, tokens, &hits
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLogin_StoresCredentials(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cajero@pos.test", body["email"])

		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"token":       "tok-123",
				"user":        map[string]any{"id": 7, "first_name": "Rosa", "last_name": "Quispe"},
				"permissions": []string{"manage_quotations"},
			},
		})
	})

	session, err := client.Login(context.Background(), "cajero@pos.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Rosa", session.User.FirstName)

	token, ok, _ := tokens.Get(context.Background(), models.TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "tok-123", token)
	name, _, _ := tokens.Get(context.Background(), models.UserNameKey)
	assert.Equal(t, "Rosa", name)
}

func TestLogin_RejectedWithoutData(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Invalid credentials"})
	})

	_, err := client.Login(context.Background(), "x", "y")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindAuth))
	assert.Equal(t, "Invalid credentials", models.Message(err))

	_, ok, _ := tokens.Get(context.Background(), models.TokenKey)
	assert.False(t, ok)
}

func TestFetchProducts(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/products", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"type":"products","id":1,"attributes":{"name":"Arroz","code":"A1","product_price":10.5,"stock":{"quantity":4},"sale_unit_name":{"name":"Kilogram"}}},
			{"type":"products","id":2,"attributes":{"name":"Azucar","code":"A2","product_price":"3.20","stock":null}}
		]}`))
	})
	require.NoError(t, tokens.Set(context.Background(), models.TokenKey, "tok"))

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Arroz", products[0].Name)
	assert.Equal(t, "10.5", products[0].Price.String())
	require.NotNil(t, products[0].Stock)
	assert.Equal(t, 4, *products[0].Stock)
	assert.Equal(t, "Kilogram", products[0].SaleUnit)
	assert.Equal(t, "3.2", products[1].Price.String())
	assert.Nil(t, products[1].Stock)
}

func TestFetchProducts_NoTokenSkipsNetwork(t *testing.T) {
	client, _, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindAuth))
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestFetchProducts_UnauthenticatedClearsToken(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "401 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token expired"})
			},
		},
		{
			name: "unauthenticated message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Unauthenticated."})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, tokens, _ := newTestClient(t, tt.handler)
			ctx := context.Background()
			require.NoError(t, tokens.Set(ctx, models.TokenKey, "expired"))
			require.NoError(t, tokens.Set(ctx, models.UserNameKey, "Rosa"))

			_, err := client.FetchProducts(ctx)
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.KindAuth))
			assert.True(t, errors.Is(err, models.ErrUnauthenticated))

			_, ok, _ := tokens.Get(ctx, models.TokenKey)
			assert.False(t, ok)
			_, ok, _ = tokens.Get(ctx, models.UserNameKey)
			assert.False(t, ok)
		})
	}
}

func TestCreateQuotation(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quotations", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var body models.QuotationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2026-10-19", body.Date)
		require.Len(t, body.Items, 1)
		assert.Equal(t, "5", body.Items[0].ProductID)

		writeJSON(w, http.StatusCreated, map[string]any{
			"data": map[string]any{
				"type":       "quotations",
				"id":         321,
				"attributes": map[string]any{"reference_code": "QT_1111"},
			},
		})
	})
	require.NoError(t, tokens.Set(context.Background(), models.TokenKey, "tok"))

	res, err := client.CreateQuotation(context.Background(), models.QuotationRequest{
		Date:  "2026-10-19",
		Items: []models.QuotationItem{{ProductID: "5", Quantity: 1}},
	}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, 321, res.ID)
	assert.Equal(t, "QT_1111", res.ReferenceCode)
}

func TestCreateQuotation_ErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantKind    models.ErrorKind
		wantMessage string
	}{
		{
			name: "server message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "The customer id field is required."})
			},
			wantKind:    models.KindServer,
			wantMessage: "The customer id field is required.",
		},
		{
			name: "raw body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("Internal Server Error"))
			},
			wantKind:    models.KindServer,
			wantMessage: "Internal Server Error",
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantKind:    models.KindServer,
			wantMessage: "502 Bad Gateway",
		},
		{
			name: "malformed success body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			wantKind: models.KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, tokens, _ := newTestClient(t, tt.handler)
			require.NoError(t, tokens.Set(context.Background(), models.TokenKey, "tok"))

			_, err := client.CreateQuotation(context.Background(), models.QuotationRequest{}, "k")
			require.Error(t, err)
			assert.True(t, models.IsKind(err, tt.wantKind), "got %v", err)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, models.Message(err))
			}
		})
	}
}

func TestCreateQuotation_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.Set(context.Background(), models.TokenKey, "tok"))
	client := NewClient(config.BackendConfig{BaseURL: server.URL, Timeout: time.Second}, tokens, nil)

	_, err := client.CreateQuotation(context.Background(), models.QuotationRequest{}, "k")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindTransport))
	assert.NotEmpty(t, models.Message(err))
}

func TestFindCustomer(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DNI", r.URL.Query().Get("filter[document_type]"))
		number := r.URL.Query().Get("filter[document_number]")
		if number != "12345678" {
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{
			map[string]any{"type": "customers", "id": 9, "attributes": map[string]any{
				"name": "Luis", "document_number": "12345678", "document_type_id": 1,
			}},
		}})
	})
	require.NoError(t, tokens.Set(context.Background(), models.TokenKey, "tok"))

	customer, err := client.FindCustomer(context.Background(), "DNI", "12345678")
	require.NoError(t, err)
	assert.Equal(t, 9, customer.ID)
	assert.Equal(t, "Luis", customer.Name)

	_, err = client.FindCustomer(context.Background(), "DNI", "87654321")
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)
}

func TestDocumentTypes(t *testing.T) {
	client, tokens, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "DNI"}, {"id": 2, "name": "RUC"}})
	})
	require.NoError(t, tokens.Set(context.Background(), models.TokenKey, "tok"))

	types, err := client.DocumentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "RUC", types[1].Name)
}
