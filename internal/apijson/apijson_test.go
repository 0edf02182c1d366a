package apijson

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelrelay/orb-go/param"
)

type testStatus string

func (s testStatus) IsKnown() bool {
	return s == "active" || s == "archived"
}

type testAddress struct {
	City *string  `json:"city,required,nullable"`
	Zip  string   `json:"zip"`
	JSON Metadata `json:"-"`
}

func (r *testAddress) UnmarshalJSON(data []byte) error {
	type shadow testAddress
	return UnmarshalRoot(data, (*shadow)(r))
}

func (r testAddress) Validate() error { return Validate(r) }

type testModel struct {
	ID      string        `json:"id,required"`
	Status  testStatus    `json:"status,required"`
	Address *testAddress  `json:"address,required,nullable"`
	Tags    []string      `json:"tags"`
	Items   []testAddress `json:"items"`
	JSON    Metadata      `json:"-"`
}

func (r *testModel) UnmarshalJSON(data []byte) error {
	type shadow testModel
	return UnmarshalRoot(data, (*shadow)(r))
}

func (r testModel) Validate() error { return Validate(r) }

func decodeModel(t *testing.T, raw string) testModel {
	t.Helper()
	var m testModel
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func requireKind(t *testing.T, err error, kind ValidationErrorKind, path string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, kind, verr.Kind)
	assert.Equal(t, path, verr.Path)
}

func TestUnmarshalRootRecordsPresence(t *testing.T) {
	raw := `{"id":"cus_1","status":"active","address":null,"tags":["a"],"region":"eu"}`
	m := decodeModel(t, raw)

	assert.Equal(t, "cus_1", m.ID)
	assert.Equal(t, raw, m.JSON.RawJSON())
	assert.True(t, m.JSON.Field("id").IsPresent())
	assert.True(t, m.JSON.Field("address").IsNull())
	assert.True(t, m.JSON.Field("items").IsMissing())
	require.Contains(t, m.JSON.ExtraFields(), "region")
	assert.Equal(t, `"eu"`, m.JSON.ExtraFields()["region"].Raw())
	assert.NoError(t, m.Validate())
}

func TestValidateRequiredAndNullable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind ValidationErrorKind
		path string
	}{
		{name: "missing id", raw: `{"status":"active","address":null}`, kind: KindMissing, path: "id"},
		{name: "null status", raw: `{"id":"x","status":null,"address":null}`, kind: KindNull, path: "status"},
		{name: "missing nullable", raw: `{"id":"x","status":"active"}`, kind: KindMissing, path: "address"},
		{name: "unknown enum", raw: `{"id":"x","status":"paused","address":null}`, kind: KindUnknownEnum, path: "status"},
		{name: "nested missing", raw: `{"id":"x","status":"active","address":{"zip":"1"}}`, kind: KindMissing, path: "address.city"},
		{
			name: "slice element",
			raw:  `{"id":"x","status":"active","address":null,"items":[{"city":"a"},{"zip":"2"}]}`,
			kind: KindMissing,
			path: "items[1].city",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeModel(t, tt.raw)
			requireKind(t, m.Validate(), tt.kind, tt.path)
		})
	}
}

func TestValidateHandBuiltModel(t *testing.T) {
	assert.NoError(t, testModel{}.Validate())
	requireKind(t, testModel{Status: "paused"}.Validate(), KindUnknownEnum, "status")
}

type testInvoiceParams struct {
	NetTerms param.Field[int64]  `json:"net_terms,required"`
	Memo     param.Field[string] `json:"memo"`
}

func (r testInvoiceParams) MarshalJSON() ([]byte, error) { return MarshalParams(r) }

type testParams struct {
	Amount      param.Field[float64]           `json:"amount,required"`
	ExpiryDate  param.Field[string]            `json:"expiry_date,required,nullable"`
	Description param.Field[string]            `json:"description"`
	Invoice     param.Field[testInvoiceParams] `json:"invoice_settings"`
}

func TestMarshalParamsTriState(t *testing.T) {
	data, err := MarshalParams(testParams{
		Amount:     param.F(10.5),
		ExpiryDate: param.Null[string](),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":10.5,"expiry_date":null}`, string(data))
	assert.NotContains(t, string(data), "description")

	data, err = MarshalParams(testParams{
		Amount:      param.F(1.0),
		ExpiryDate:  param.F("2025-01-01"),
		Description: param.Null[string](),
		Invoice:     param.F(testInvoiceParams{NetTerms: param.F(int64(30))}),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1,"expiry_date":"2025-01-01","description":null,"invoice_settings":{"net_terms":30}}`, string(data))
}

func TestMarshalParamsRequired(t *testing.T) {
	_, err := MarshalParams(testParams{ExpiryDate: param.Null[string]()})
	requireKind(t, err, KindMissing, "amount")

	_, err = MarshalParams(testParams{Amount: param.F(1.0)})
	requireKind(t, err, KindMissing, "expiry_date")

	_, err = json.Marshal(struct {
		Invoice param.Field[testInvoiceParams] `json:"invoice"`
	}{Invoice: param.F(testInvoiceParams{})})
	require.Error(t, err)

	_, err = MarshalParams(testParams{
		Amount:     param.F(1.0),
		ExpiryDate: param.Null[string](),
		Invoice:    param.F(testInvoiceParams{Memo: param.F("m")}),
	})
	requireKind(t, err, KindMissing, "invoice_settings.net_terms")
}

func TestMarshalTaggedParams(t *testing.T) {
	data, err := MarshalTaggedParams(testParams{Amount: param.F(2.0), ExpiryDate: param.Null[string]()}, "entry_type", "increment")
	require.NoError(t, err)
	assert.Equal(t, `{"entry_type":"increment","amount":2,"expiry_date":null}`, string(data))
}

type shape interface{ isShape() }

type circle struct {
	Kind   string   `json:"kind,required"`
	Radius float64  `json:"radius,required"`
	JSON   Metadata `json:"-"`
}

func (r *circle) UnmarshalJSON(data []byte) error {
	type shadow circle
	return UnmarshalRoot(data, (*shadow)(r))
}

func (r circle) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	return ExpectConstant("kind", r.Kind, "circle")
}

func (circle) isShape() {}

type square struct {
	Kind string   `json:"kind,required"`
	Side float64  `json:"side,required"`
	JSON Metadata `json:"-"`
}

func (r *square) UnmarshalJSON(data []byte) error {
	type shadow square
	return UnmarshalRoot(data, (*shadow)(r))
}

func (r square) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	return ExpectConstant("kind", r.Kind, "square")
}

func (square) isShape() {}

type unknownShape struct{ Raw json.RawMessage }

func (unknownShape) isShape() {}

var shapeVariants = []Variant[shape]{
	{Tag: "circle", Decode: As(func(v circle) shape { return v })},
	{Tag: "square", Decode: As(func(v square) shape { return v })},
}

func newUnknownShape(raw []byte) shape { return unknownShape{Raw: raw} }

func TestUnmarshalUnionByTag(t *testing.T) {
	got, err := UnmarshalUnion([]byte(`{"kind":"square","side":3}`), "kind", newUnknownShape, shapeVariants...)
	require.NoError(t, err)
	sq, ok := got.(square)
	require.True(t, ok, "expected square, got %T", got)
	assert.Equal(t, 3.0, sq.Side)
}

func TestUnmarshalUnionTrialOrder(t *testing.T) {
	got, err := UnmarshalUnion([]byte(`{"kind":"square","side":4}`), "", newUnknownShape, shapeVariants...)
	require.NoError(t, err)
	assert.IsType(t, square{}, got)
}

func TestUnmarshalUnionFallsBackToUnknown(t *testing.T) {
	raw := `{"kind":"hexagon","sides":6}`
	got, err := UnmarshalUnion([]byte(raw), "kind", newUnknownShape, shapeVariants...)
	require.NoError(t, err)
	unk, ok := got.(unknownShape)
	require.True(t, ok, "expected unknown, got %T", got)
	assert.JSONEq(t, raw, string(unk.Raw))
}

func TestUnmarshalUnionNoMatch(t *testing.T) {
	_, err := UnmarshalUnion([]byte(`42`), "kind", newUnknownShape, shapeVariants...)
	requireKind(t, err, KindUnmatchedUnion, "")

	_, err = UnmarshalUnion([]byte(`{"kind":"hexagon"}`), "kind", nil, shapeVariants...)
	requireKind(t, err, KindUnmatchedUnion, "")
}

func TestValidateConstantTag(t *testing.T) {
	var c circle
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"circle","radius":1}`), &c))
	require.NoError(t, c.Validate())

	c.Kind = "square"
	err := c.Validate()
	requireKind(t, err, KindConstant, "kind")
	assert.EqualError(t, err, "orb: kind: expected circle, got square")

	assert.NoError(t, ExpectConstant("kind", "square", "square"))
	requireKind(t, ExpectConstant("n", 2, 1), KindConstant, "n")
}

func TestValidationErrorMessage(t *testing.T) {
	err := Prefix(&ValidationError{Kind: KindMissing, Path: "id"}, "data[0].customer")
	assert.EqualError(t, err, "orb: data[0].customer.id: required field missing")
}
