package orb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/modelrelay/orb-go/internal/apijson"
	"github.com/modelrelay/orb-go/internal/apiquery"
	"github.com/modelrelay/orb-go/param"
	"github.com/modelrelay/orb-go/routes"
)

// Migration moves every subscription on a plan to a newer plan version.
type Migration struct {
	ID            string                  `json:"id,required"`
	CurrentPlanID string                  `json:"current_plan_id,required"`
	PlanID        string                  `json:"plan_id,required"`
	EffectiveTime *MigrationEffectiveTime `json:"effective_time,required,nullable"`
	Status        MigrationStatus         `json:"status,required"`
	JSON          apijson.Metadata        `json:"-"`
}

func (r *Migration) UnmarshalJSON(data []byte) error {
	type shadow Migration
	return apijson.UnmarshalRoot(data, (*shadow)(r))
}

func (r Migration) Validate() error { return apijson.Validate(r) }

// EffectiveTimeKind says which form a MigrationEffectiveTime took on the wire.
type EffectiveTimeKind string

const (
	EffectiveTimeDateTime  EffectiveTimeKind = "date_time"
	EffectiveTimeDate      EffectiveTimeKind = "date"
	EffectiveTimeEndOfTerm EffectiveTimeKind = "end_of_term"
	// EffectiveTimeUnknown holds a value no known form accepted.
	EffectiveTimeUnknown EffectiveTimeKind = ""
)

const endOfTerm = "end_of_term"

// MigrationEffectiveTime is when a migration applies: an instant, a
// calendar date, or the end of each subscription's current term.
type MigrationEffectiveTime struct {
	Kind     EffectiveTimeKind
	DateTime time.Time
	Date     openapi_types.Date
	Raw      json.RawMessage
}

// EffectiveAt returns an instant, or zero for end_of_term.
func (r MigrationEffectiveTime) EffectiveAt() time.Time {
	switch r.Kind {
	case EffectiveTimeDateTime:
		return r.DateTime
	case EffectiveTimeDate:
		return r.Date.Time
	}
	return time.Time{}
}

var effectiveTimeVariants = []apijson.Variant[MigrationEffectiveTime]{
	{Decode: func(data []byte) (MigrationEffectiveTime, error) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return MigrationEffectiveTime{}, err
		}
		if s != endOfTerm {
			return MigrationEffectiveTime{}, errors.New("not end_of_term")
		}
		return MigrationEffectiveTime{Kind: EffectiveTimeEndOfTerm}, nil
	}},
	{Decode: apijson.As(func(t time.Time) MigrationEffectiveTime {
		return MigrationEffectiveTime{Kind: EffectiveTimeDateTime, DateTime: t}
	})},
	{Decode: apijson.As(func(d openapi_types.Date) MigrationEffectiveTime {
		return MigrationEffectiveTime{Kind: EffectiveTimeDate, Date: d}
	})},
}

func (r *MigrationEffectiveTime) UnmarshalJSON(data []byte) error {
	v, err := apijson.UnmarshalUnion(data, "", func(raw []byte) MigrationEffectiveTime {
		return MigrationEffectiveTime{Kind: EffectiveTimeUnknown, Raw: raw}
	}, effectiveTimeVariants...)
	if err != nil {
		return err
	}
	v.Raw = append(json.RawMessage(nil), data...)
	*r = v
	return nil
}

func (r MigrationEffectiveTime) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case EffectiveTimeDateTime:
		return json.Marshal(r.DateTime)
	case EffectiveTimeDate:
		return json.Marshal(r.Date)
	case EffectiveTimeEndOfTerm:
		return json.Marshal(endOfTerm)
	}
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// Validate fails for a value none of the known forms accepted.
func (r MigrationEffectiveTime) Validate() error {
	if r.Kind == EffectiveTimeUnknown {
		return &ValidationError{
			Kind:   ValidationUnmatchedUnion,
			Detail: fmt.Sprintf("unrecognized effective time %s", r.Raw),
		}
	}
	return nil
}

// MigrationListParams pages a plan's migrations.
type MigrationListParams struct {
	Cursor param.Field[string] `query:"cursor"`
	Limit  param.Field[int64]  `query:"limit"`
}

// MigrationsClient reads and cancels plan migrations.
type MigrationsClient struct {
	client *Client
}

// ensureInitialized returns an error if the client is not properly initialized.
func (c *MigrationsClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return fmt.Errorf("orb: migrations client not initialized")
	}
	return nil
}

// List returns a page of migrations of the given plan.
func (c *MigrationsClient) List(ctx context.Context, planID string, params *MigrationListParams, opts ...RequestOption) (*Page[Migration], error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(routes.PlanMigrations, apiquery.Param("plan_id", planID))
	if err != nil {
		return nil, err
	}
	query, err := listQuery(params)
	if err != nil {
		return nil, err
	}
	return getPage[Migration](ctx, c.client, path, query, opts)
}

// ListAutoPaging iterates over every migration of the given plan.
func (c *MigrationsClient) ListAutoPaging(ctx context.Context, planID string, params *MigrationListParams, opts ...RequestOption) *AutoPager[Migration] {
	page, err := c.List(ctx, planID, params, opts...)
	return newAutoPager(page, err)
}

func (c *MigrationsClient) call(ctx context.Context, method, route, planID, migrationID string, opts []RequestOption) (*Migration, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	path, err := apiquery.Path(route, apiquery.Param("plan_id", planID), apiquery.Param("migration_id", migrationID))
	if err != nil {
		return nil, err
	}
	return doJSON[Migration](ctx, c.client, method, path, nil, nil, opts)
}

// Fetch returns one migration.
func (c *MigrationsClient) Fetch(ctx context.Context, planID, migrationID string, opts ...RequestOption) (*Migration, error) {
	return c.call(ctx, http.MethodGet, routes.PlanMigration, planID, migrationID, opts)
}

// Cancel stops a migration that has not completed. Subscriptions already
// moved stay on the new plan version.
func (c *MigrationsClient) Cancel(ctx context.Context, planID, migrationID string, opts ...RequestOption) (*Migration, error) {
	return c.call(ctx, http.MethodPost, routes.PlanMigrationCancel, planID, migrationID, opts)
}
