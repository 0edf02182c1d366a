package orb

import (
	"context"
	"net/http"
	"testing"

	"github.com/modelrelay/orb-go/testutil"
)

func TestPlansFetchKeepsUnmodelledFields(t *testing.T) {
	srv := testutil.NewServer().
		On(http.MethodGet, "/plans/plan_1", testutil.JSON(200, planJSON)).
		On(http.MethodGet, "/plans/external_plan_id/gold%20plan", testutil.JSON(200, planJSON))
	defer srv.Close()
	client := newTestClient(t, srv)

	plan, err := client.Plans.Fetch(context.Background(), "plan_1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if plan.Name != "Gold" || plan.Product.ID != "prod_1" || plan.Status != PlanStatusActive {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.NetTerms == nil || *plan.NetTerms != 30 {
		t.Fatalf("unexpected net terms %v", plan.NetTerms)
	}
	prices, ok := plan.JSON.ExtraFields()["prices"]
	if !ok || canonicalJSON(t, []byte(prices.Raw())) != `[{"id":"price_1"}]` {
		t.Fatalf("prices should be kept as an extra field, got %v", plan.JSON.ExtraFields())
	}

	if _, err := client.Plans.FetchByExternalID(context.Background(), "gold plan"); err != nil {
		t.Fatalf("fetch by external id: %v", err)
	}
	if got := srv.Last().Path; got != "/plans/external_plan_id/gold%20plan" {
		t.Fatalf("unexpected path %s", got)
	}
}

func TestPlansListByStatus(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/plans", testutil.JSON(200, listJSON(false, "", planJSON)))
	defer srv.Close()
	client := newTestClient(t, srv)

	var names []string
	pager := client.Plans.ListAutoPaging(context.Background(), &PlanListParams{Status: F(PlanStatusActive)})
	for pager.Next(context.Background()) {
		names = append(names, pager.Current().Name)
	}
	if err := pager.Err(); err != nil {
		t.Fatalf("pager: %v", err)
	}
	if len(names) != 1 || names[0] != "Gold" {
		t.Fatalf("unexpected plans %v", names)
	}
	if got := srv.Last().Query.Get("status"); got != "active" {
		t.Fatalf("unexpected status filter %q", got)
	}
}
