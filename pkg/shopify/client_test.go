// ABOUTME: Tests for the Admin API client
// ABOUTME: Exercises retries, error mapping, and lookups against httptest servers

package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fastLimiter returns a limiter that never makes tests wait.
func fastLimiter() *RateLimiter {
	return NewRateLimiter(100000, 1000)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ShopDomain:  "test-shop.myshopify.com",
		AccessToken: "shpat_test",
		BaseURL:     server.URL,
		MaxRetries:  2,
		Limiter:     fastLimiter(),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func graphQLOK(data string) string {
	return `{"data": ` + data + `}`
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Config{AccessToken: "t"}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials for missing domain, got %v", err)
	}
	if _, err := NewClient(Config{ShopDomain: "s.myshopify.com"}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials for missing token, got %v", err)
	}
}

func TestExecuteSuccess(t *testing.T) {
	var gotToken, gotContentType string
	var gotBody graphQLRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		w.Write([]byte(graphQLOK(`{"shop": {"name": "Test"}}`)))
	})

	data, err := client.Execute(context.Background(), `query shopName { shop { name } }`, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if gotToken != "shpat_test" {
		t.Errorf("Expected access token header, got %q", gotToken)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	if gotBody.Query == "" {
		t.Error("Query not sent")
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("Bad data payload: %v", err)
	}
	if _, ok := payload["shop"]; !ok {
		t.Errorf("Data payload missing shop: %v", payload)
	}
}

func TestExecuteRetriesThrottling(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(graphQLOK(`{}`)))
	})

	if _, err := client.Execute(context.Background(), `query q { x }`, nil); err != nil {
		t.Fatalf("Execute failed after retry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestExecuteRetriesExhausted(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Execute(context.Background(), `query q { x }`, nil)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("Expected ErrRetriesExhausted, got %v", err)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected wrapped 503 HTTPError, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected MaxRetries+1 = 3 attempts, got %d", attempts)
	}
}

func TestExecuteNonRetryableStatus(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors": "Invalid API key"}`))
	})

	_, err := client.Execute(context.Background(), `query q { x }`, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", httpErr.StatusCode)
	}
	if attempts != 1 {
		t.Errorf("Client errors must not retry, got %d attempts", attempts)
	}
}

func TestExecuteGraphQLErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null, "errors": [{"message": "Field 'bogus' doesn't exist"}]}`))
	})

	_, err := client.Execute(context.Background(), `query q { bogus }`, nil)
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("Expected ProtocolError, got %v", err)
	}
	if len(protoErr.Messages) != 1 {
		t.Errorf("Expected 1 message, got %v", protoErr.Messages)
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Execute(ctx, `query q { x }`, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFetchDefinitionFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(graphQLOK(`{
			"metafieldDefinitions": {"edges": [{"node": {
				"id": "gid://shopify/MetafieldDefinition/1",
				"name": "Tags",
				"namespace": "custom",
				"key": "tags",
				"type": {"name": "list.single_line_text_field"}
			}}]}
		}`)))
	})

	def, err := client.FetchDefinition(context.Background(), "custom", "tags")
	if err != nil {
		t.Fatalf("FetchDefinition failed: %v", err)
	}
	if def == nil {
		t.Fatal("Expected a definition")
	}
	if def.Type.String() != "list.single_line_text_field" || !def.Type.List {
		t.Errorf("Unexpected type: %+v", def.Type)
	}
	if def.Namespace != "custom" || def.Key != "tags" {
		t.Errorf("Unexpected identity: %+v", def)
	}
}

func TestFetchDefinitionAbsent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(graphQLOK(`{"metafieldDefinitions": {"edges": []}}`)))
	})

	def, err := client.FetchDefinition(context.Background(), "custom", "missing")
	if err != nil {
		t.Fatalf("FetchDefinition failed: %v", err)
	}
	if def != nil {
		t.Errorf("Expected nil for absent definition, got %+v", def)
	}
}

func TestFetchMetafieldFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(graphQLOK(`{
			"product": {"metafield": {
				"id": "gid://shopify/Metafield/5",
				"namespace": "custom",
				"key": "count",
				"type": "number_integer",
				"value": "42",
				"updatedAt": "2024-05-01T12:00:00Z"
			}}
		}`)))
	})

	mf, err := client.FetchMetafield(context.Background(), "gid://shopify/Product/1", "custom", "count")
	if err != nil {
		t.Fatalf("FetchMetafield failed: %v", err)
	}
	if mf == nil {
		t.Fatal("Expected a metafield")
	}
	if mf.Value != "42" || mf.Type.String() != "number_integer" {
		t.Errorf("Unexpected metafield: %+v", mf)
	}
	if mf.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not parsed")
	}
}

func TestFetchMetafieldAbsent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(graphQLOK(`{"product": {"metafield": null}}`)))
	})

	mf, err := client.FetchMetafield(context.Background(), "gid://shopify/Product/1", "custom", "missing")
	if err != nil {
		t.Fatalf("FetchMetafield failed: %v", err)
	}
	if mf != nil {
		t.Errorf("Expected nil for absent metafield, got %+v", mf)
	}
}

func TestOperationName(t *testing.T) {
	cases := []struct {
		document string
		want     string
	}{
		{`query shopName { shop { name } }`, "shopName"},
		{`mutation productUpdateMetafields($input: ProductInput!) { x }`, "productUpdateMetafields"},
		{`{ shop { name } }`, "graphql"},
	}
	for _, tc := range cases {
		if got := operationName(tc.document); got != tc.want {
			t.Errorf("operationName(%q) = %q, want %q", tc.document, got, tc.want)
		}
	}
}
