package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"druckerei-client/api"
	"druckerei-client/cache"
	"druckerei-client/filter"
	"druckerei-client/models"
)

func TestOrderAccessorMatchesItemText(t *testing.T) {
	orders := []models.Order{
		models.NormalizeOrder(models.Order{
			ID: "o1", OrderNumber: "ORD-1", CustomerName: "Stadtwerke",
			Items: []models.OrderItem{{ID: "i1", Description: "glossy brochure"}},
		}),
		models.NormalizeOrder(models.Order{
			ID: "o2", OrderNumber: "ORD-2", CustomerName: "Acme",
			Items: []models.OrderItem{{ID: "i2", Description: "business cards"}},
		}),
	}

	res := filter.Apply(orders, filter.State{Search: "brochure"}, orderAccessor())
	require.Len(t, res.Visible, 1)
	assert.Equal(t, "o1", res.Visible[0].ID, "an item hit surfaces the whole order")
}

func TestOrderCreateComputesLineTotals(t *testing.T) {
	t.Setenv("DISPLAY_PAGE_SIZE", "10")
	t.Setenv("SERVER_PAGE_SIZE", "200")

	var received struct {
		CustomerName string `json:"customer_name"`
		Items        []struct {
			Quantity  int     `json:"quantity"`
			UnitPrice float64 `json:"unit_price"`
		} `json:"items"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []models.Order{}, "total_count": 0})
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		writeJSON(w, http.StatusCreated, models.NormalizeOrder(models.Order{
			ID:           "srv-o1",
			OrderNumber:  "ORD-1003",
			CustomerName: received.CustomerName,
			TotalAmount:  d("260"),
		}))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	toasts := &toastRecorder{}
	src := NewOrderSource(api.NewClient(srv.URL), toasts,
		cache.Policies{List: cache.Policy{DedupeInterval: time.Hour}})

	_, err := src.Load(context.Background(), filter.State{}, 1)
	require.NoError(t, err)

	out := src.Create(context.Background(), OrderInput{
		CustomerName: "Acme Handels GmbH",
		Items: []OrderItemInput{
			{Description: "A5 flyer", Quantity: 5000, UnitPrice: 0.04},
			{Description: "poster", Quantity: 10, UnitPrice: 6},
		},
	})
	require.True(t, out.OK, "err: %v", out.Err)
	assert.Equal(t, "srv-o1", out.Entity.ID)
	assert.Equal(t, "ORD-1003", out.Entity.OrderNumber, "order number is backend-assigned")
	assert.Equal(t, 2, len(received.Items))
}

func TestOrderCreateRequiresItems(t *testing.T) {
	src := NewOrderSource(api.NewClient("http://127.0.0.1:1"), &toastRecorder{}, cache.Policies{})

	out := src.Create(context.Background(), OrderInput{CustomerName: "Acme"})
	require.False(t, out.OK)
	var verr *models.ValidationError
	require.ErrorAs(t, out.Err, &verr)
	assert.Equal(t, "items", verr.Field)
}
