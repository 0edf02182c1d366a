package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orb "github.com/modelrelay/orb-go"
	"github.com/modelrelay/orb-go/testutil"
)

const customerBody = `{"id":"cus_1","external_customer_id":"ext-1","name":"Acme","email":"billing@acme.test","currency":"USD","balance":"0.00"}`

func entryBody(entryType string) string {
	return `{"id":"le_1","amount":50,"created_at":"2024-03-01T00:00:00Z","credit_block":{"id":"blk_1","expiry_date":null,"per_unit_cost_basis":null},` +
		`"currency":"credits","customer":{"id":"cus_1","external_customer_id":null},"description":null,"ending_balance":150,` +
		`"entry_status":"committed","entry_type":"` + entryType + `","ledger_sequence_number":1,"metadata":{},"starting_balance":100}`
}

func listBody(items ...string) string {
	return `{"data":[` + strings.Join(items, ",") + `],"pagination_metadata":{"has_more":false,"next_cursor":null}}`
}

type run struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
	err    error
}

func execute(t *testing.T, srv *testutil.Server, env map[string]string, args ...string) *run {
	t.Helper()
	getenv := func(k string) string { return env[k] }
	root := newRootCmd(getenv, orb.WithHTTPClient(srv.Client()), orb.WithMaxRetries(0))
	r := &run{}
	root.SetOut(&r.stdout)
	root.SetErr(&r.stderr)
	base := []string{"--config", "", "--base-url", srv.URL, "--api-key", "cli-key"}
	root.SetArgs(append(base, args...))
	r.err = root.Execute()
	return r
}

func TestCustomersGetText(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/customers/external_customer_id/ext-1", testutil.JSON(200, customerBody))
	defer srv.Close()

	r := execute(t, srv, nil, "customers", "get", "--external", "ext-1")
	require.NoError(t, r.err)
	out := r.stdout.String()
	assert.Contains(t, out, "EXTERNAL ID")
	assert.Contains(t, out, "cus_1")
	assert.Contains(t, out, "billing@acme.test")
	assert.Equal(t, "Bearer cli-key", srv.Last().Header.Get("Authorization"))
	assert.True(t, strings.HasPrefix(srv.Last().Header.Get("User-Agent"), "orbctl/"))
}

func TestCreditsBalanceJSON(t *testing.T) {
	block := func(id, balance string) string {
		return `{"id":"` + id + `","balance":` + balance + `,"effective_date":null,"expiry_date":null,"maximum_initial_balance":null,"per_unit_cost_basis":null,"status":"active"}`
	}
	srv := testutil.NewServer().On(http.MethodGet, "/customers/cus_1/credits",
		testutil.JSON(200, listBody(block("blk_1", "12.5"), block("blk_2", "7.5"))))
	defer srv.Close()

	r := execute(t, srv, nil, "-o", "json", "credits", "balance", "cus_1", "--currency", "credits")
	require.NoError(t, r.err)
	var out struct {
		Blocks []map[string]any `json:"blocks"`
		Total  float64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(r.stdout.Bytes(), &out))
	assert.Len(t, out.Blocks, 2)
	assert.Equal(t, 20.0, out.Total)
	assert.Equal(t, "credits", srv.Last().Query.Get("currency"))
}

func TestLedgerIncrement(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodPost, "/customers/cus_1/credits/ledger_entry", testutil.JSON(200, entryBody("increment")))
	defer srv.Close()

	r := execute(t, srv, nil, "ledger", "increment", "cus_1", "--amount", "50", "--expiry", "2025-06-30", "--description", "promo")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout.String(), "Increment")
	assert.Contains(t, r.stdout.String(), "Committed")

	var body map[string]any
	require.NoError(t, json.Unmarshal(srv.Last().Body, &body))
	assert.Equal(t, "increment", body["entry_type"])
	assert.Equal(t, 50.0, body["amount"])
	assert.Equal(t, "2025-06-30T00:00:00Z", body["expiry_date"])
	assert.Equal(t, "promo", body["description"])
}

func TestLedgerDecrementRejectsNonPositiveAmount(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()

	r := execute(t, srv, nil, "ledger", "decrement", "cus_1", "--amount", "0")
	require.Error(t, r.err)
	assert.True(t, orb.IsValidationError(r.err))
	assert.Empty(t, srv.Requests())
}

func TestSubscriptionsCancelNeedsDateForRequestedDate(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()

	r := execute(t, srv, nil, "subscriptions", "cancel", "sub_1", "--option", "requested_date")
	var verr *orb.ValidationError
	require.ErrorAs(t, r.err, &verr)
	assert.Equal(t, "cancellation_date", verr.Path)
	assert.Empty(t, srv.Requests())
}

func TestMigrationsGet(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/plans/plan_1/migrations/mig_1",
		testutil.JSON(200, `{"id":"mig_1","current_plan_id":"plan_1","plan_id":"plan_2","effective_time":"end_of_term","status":"action_needed"}`))
	defer srv.Close()

	r := execute(t, srv, nil, "migrations", "get", "plan_1", "mig_1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout.String(), "Action Needed")
	assert.Contains(t, r.stdout.String(), "end of term")
}

func TestTopUpsDeleteExternal(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodDelete, "/customers/external_customer_id/ext-1/credits/top_ups/tu_1", testutil.Response{Status: 204})
	defer srv.Close()

	r := execute(t, srv, nil, "topups", "delete", "--external", "ext-1", "tu_1")
	require.NoError(t, r.err)
	assert.Equal(t, "deleted top-up tu_1\n", r.stdout.String())
}

func TestUnknownOutputFormat(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()

	r := execute(t, srv, nil, "-o", "xml", "customers", "list")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "xml")
}

func TestConfigPrecedence(t *testing.T) {
	srv := testutil.NewServer().On(http.MethodGet, "/customers/cus_1", testutil.JSON(200, customerBody))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\nbase_url: "+srv.URL+"\nlog_level: debug\nmax_retries: 0\n"), 0o600))

	root := newRootCmd(func(k string) string {
		if k == orb.EnvAPIKey {
			return "env-key"
		}
		return ""
	}, orb.WithHTTPClient(srv.Client()))
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--config", path, "customers", "get", "cus_1"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "Bearer env-key", srv.Last().Header.Get("Authorization"))
	assert.Contains(t, stderr.String(), "http_request", "debug level from the config file should log requests")
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, fileConfig{}, cfg)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: true\ntimeout: 5s\nmax_retries: 4\n"), 0o600))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, 4, *cfg.MaxRetries)
	opts, err := cfg.clientOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	cfg.Timeout = "soon"
	_, err = cfg.clientOptions()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("strict: [\n"), 0o600))
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pending Payment", statusLabel("pending_payment"))
	assert.Equal(t, "Active", statusLabel("active"))
	assert.Equal(t, "-", statusLabel(""))
}
