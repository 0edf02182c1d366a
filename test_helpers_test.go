package orb

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/modelrelay/orb-go/testutil"
)

const customerJSON = `{
	"id": "cus_1",
	"external_customer_id": "ext-1",
	"name": "Acme",
	"email": "billing@acme.test",
	"additional_emails": [],
	"auto_collection": true,
	"balance": "0.00",
	"billing_address": null,
	"shipping_address": {"city": "Berlin", "country": "DE", "line1": "Str 1", "line2": null, "postal_code": "10115", "state": null},
	"created_at": "2024-01-02T03:04:05Z",
	"currency": "USD",
	"email_delivery": true,
	"exempt_from_automated_tax": null,
	"metadata": {"tier": "gold"},
	"payment_provider": "stripe_charge",
	"payment_provider_id": "cus_stripe",
	"portal_url": null,
	"timezone": "Etc/UTC"
}`

const planJSON = `{
	"id": "plan_1",
	"name": "Gold",
	"description": "Gold plan",
	"created_at": "2024-01-01T00:00:00Z",
	"currency": "USD",
	"invoicing_currency": "USD",
	"default_invoice_memo": null,
	"external_plan_id": "gold",
	"metadata": {},
	"net_terms": 30,
	"product": {"id": "prod_1", "name": "Platform", "created_at": "2024-01-01T00:00:00Z"},
	"status": "active",
	"version": 2,
	"prices": [{"id": "price_1"}]
}`

const subscriptionJSON = `{
	"id": "sub_1",
	"customer": ` + customerJSON + `,
	"plan": ` + planJSON + `,
	"status": "active",
	"start_date": "2024-02-01T00:00:00Z",
	"end_date": null,
	"created_at": "2024-02-01T00:00:00Z",
	"current_billing_period_start_date": "2024-02-01T00:00:00Z",
	"current_billing_period_end_date": "2024-03-01T00:00:00Z",
	"active_plan_phase_order": null,
	"auto_collection": true,
	"billing_cycle_day": 1,
	"default_invoice_memo": null,
	"invoicing_threshold": null,
	"metadata": {},
	"net_terms": 30,
	"trial_info": {"end_date": null}
}`

// listJSON wraps items in a list response.
func listJSON(hasMore bool, next string, items ...string) string {
	cursor := "null"
	if next != "" {
		cursor = `"` + next + `"`
	}
	data := "["
	for i, it := range items {
		if i > 0 {
			data += ","
		}
		data += it
	}
	data += "]"
	more := "false"
	if hasMore {
		more = "true"
	}
	return `{"data":` + data + `,"pagination_metadata":{"has_more":` + more + `,"next_cursor":` + cursor + `}}`
}

func newTestClient(t *testing.T, srv *testutil.Server, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithAPIKey("orb-test-key"),
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRetry(RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}),
	}
	client, err := NewClient(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new test client: %v", err)
	}
	return client
}

func decodeBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode request body %q: %v", raw, err)
	}
	return body
}

func canonicalJSON(t *testing.T, raw []byte) string {
	t.Helper()
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	canon, err := json.Marshal(anyVal)
	if err != nil {
		t.Fatalf("canonicalize json: %v", err)
	}
	return string(canon)
}
