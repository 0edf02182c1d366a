package orb

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/modelrelay/orb-go/testutil"
)

func TestSubscriptionsNewChecksIdentifiers(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodPost, "/subscriptions", testutil.JSON(200, subscriptionJSON))
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name   string
		params SubscriptionNewParams
		kind   ValidationErrorKind
		path   string
	}{
		{name: "no customer", params: SubscriptionNewParams{PlanID: String("plan_1")}, kind: ValidationMissing, path: "customer_id"},
		{
			name:   "both customers",
			params: SubscriptionNewParams{CustomerID: String("cus_1"), ExternalCustomerID: String("ext-1"), PlanID: String("plan_1")},
			kind:   ValidationInvalid,
			path:   "customer_id",
		},
		{name: "no plan", params: SubscriptionNewParams{CustomerID: String("cus_1")}, kind: ValidationMissing, path: "plan_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Subscriptions.New(ctx, tt.params)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Kind != tt.kind || verr.Path != tt.path {
				t.Fatalf("expected %s at %s, got %v", tt.kind, tt.path, err)
			}
		})
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}

	sub, err := client.Subscriptions.New(ctx, SubscriptionNewParams{
		ExternalCustomerID: String("ext-1"),
		ExternalPlanID:     String("gold"),
		NetTerms:           Int(30),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sub.Customer.ID != "cus_1" || sub.Plan.ID != "plan_1" || sub.Status != SubscriptionStatusActive {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if err := sub.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := `{"external_customer_id":"ext-1","external_plan_id":"gold","net_terms":30}`
	if got := canonicalJSON(t, srv.Last().Body); got != want {
		t.Fatalf("unexpected body\n got %s\nwant %s", got, want)
	}
}

func TestSubscriptionsCancel(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodPost, "/subscriptions/sub_1/cancel", testutil.JSON(200, subscriptionJSON))
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	var verr *ValidationError
	_, err := client.Subscriptions.Cancel(ctx, "sub_1", SubscriptionCancelParams{})
	if !errors.As(err, &verr) || verr.Path != "cancel_option" || verr.Kind != ValidationMissing {
		t.Fatalf("expected missing cancel_option, got %v", err)
	}
	_, err = client.Subscriptions.Cancel(ctx, "sub_1", SubscriptionCancelParams{CancelOption: F(CancelOption("tomorrow"))})
	if !errors.As(err, &verr) || verr.Kind != ValidationUnknownEnum {
		t.Fatalf("expected unknown enum, got %v", err)
	}
	_, err = client.Subscriptions.Cancel(ctx, "sub_1", SubscriptionCancelParams{CancelOption: F(CancelOptionRequestedDate)})
	if !errors.As(err, &verr) || verr.Path != "cancellation_date" {
		t.Fatalf("expected missing cancellation_date, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}

	_, err = client.Subscriptions.Cancel(ctx, "sub_1", SubscriptionCancelParams{
		CancelOption:     F(CancelOptionRequestedDate),
		CancellationDate: Time(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	want := `{"cancel_option":"requested_date","cancellation_date":"2024-12-31T00:00:00Z"}`
	if got := canonicalJSON(t, srv.Last().Body); got != want {
		t.Fatalf("unexpected body\n got %s\nwant %s", got, want)
	}
}

func TestSubscriptionsSchedulePlanChange(t *testing.T) {
	srv := testutil.NewServer().
		On(http.MethodPost, "/subscriptions/sub_1/schedule_plan_change", testutil.JSON(200, subscriptionJSON)).
		On(http.MethodPost, "/subscriptions/sub_1/unschedule_cancellation", testutil.JSON(200, subscriptionJSON))
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.Subscriptions.SchedulePlanChange(ctx, "sub_1", SubscriptionSchedulePlanChangeParams{
		ChangeOption: F(ChangeOptionImmediate),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "plan_id" {
		t.Fatalf("expected plan_id error, got %v", err)
	}

	_, err = client.Subscriptions.SchedulePlanChange(ctx, "sub_1", SubscriptionSchedulePlanChangeParams{
		ChangeOption:          F(ChangeOptionEndOfSubscriptionTerm),
		PlanID:                String("plan_2"),
		BillingCycleAlignment: F(BillingCycleAlignmentUnchanged),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	want := `{"billing_cycle_alignment":"unchanged","change_option":"end_of_subscription_term","plan_id":"plan_2"}`
	if got := canonicalJSON(t, srv.Last().Body); got != want {
		t.Fatalf("unexpected body\n got %s\nwant %s", got, want)
	}

	if _, err := client.Subscriptions.UnscheduleCancellation(ctx, "sub_1"); err != nil {
		t.Fatalf("unschedule: %v", err)
	}
}

func TestSubscriptionsListFilters(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/subscriptions", testutil.JSON(200, listJSON(false, "", subscriptionJSON)))
	defer srv.Close()
	client := newTestClient(t, srv)

	page, err := client.Subscriptions.List(context.Background(), &SubscriptionListParams{
		CustomerID: F([]string{"cus_1", "cus_2"}),
		Status:     F(SubscriptionStatusActive),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Plan.Name != "Gold" {
		t.Fatalf("unexpected page %+v", page.Data)
	}
	q := srv.Last().Query
	if ids := q["customer_id[]"]; len(ids) != 2 || ids[0] != "cus_1" || ids[1] != "cus_2" {
		t.Fatalf("unexpected customer filter %v", q)
	}
	if q.Get("status") != "active" {
		t.Fatalf("unexpected status filter %v", q)
	}
}

func TestSubscriptionsUpdateClearsWithNull(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodPut, "/subscriptions/sub_1", testutil.JSON(200, subscriptionJSON))
	defer srv.Close()
	client := newTestClient(t, srv)

	if _, err := client.Subscriptions.Update(context.Background(), "sub_1", SubscriptionUpdateParams{
		DefaultInvoiceMemo: Null[string](),
		NetTerms:           Int(45),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	want := `{"default_invoice_memo":null,"net_terms":45}`
	if got := canonicalJSON(t, srv.Last().Body); got != want {
		t.Fatalf("unexpected body\n got %s\nwant %s", got, want)
	}
}
