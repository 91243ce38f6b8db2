package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicenow-toolkit/internal/common/errors"
	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/snow"
)

type fakeTableClient struct {
	// responses maps sysparm_query strings to results
	responses map[string][]snow.Record
	errors    map[string]error
	calls     []string
}

func (f *fakeTableClient) GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error) {
	f.calls = append(f.calls, q.Query)
	if err, ok := f.errors[q.Query]; ok {
		return nil, err
	}
	return f.responses[q.Query], nil
}

func newResolver(t *testing.T, client TableClient) *Resolver {
	t.Helper()
	return NewResolver(client, logger.NewTestLogger(t))
}

func TestResolve_SysIDFastPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "lowercase", input: "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"},
		{name: "uppercase", input: "A1B2C3D4E5F6A7B8C9D0E1F2A3B4C5D6"},
		{name: "mixed case", input: "A1b2C3d4E5f6a7B8c9D0e1F2a3B4c5D6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeTableClient{}
			r := newResolver(t, client)

			result, err := r.Resolve(context.Background(), KindUser, tt.input)

			require.NoError(t, err)
			assert.True(t, result.Resolved)
			assert.Equal(t, tt.input, result.CanonicalID)
			assert.Equal(t, "sys_id", result.MatchedField)
			assert.Empty(t, client.calls, "sys_id input must not trigger lookups")
		})
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	client := &fakeTableClient{}
	r := newResolver(t, client)

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := r.Resolve(context.Background(), KindUser, input)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
	}
	assert.Empty(t, client.calls)
}

func TestResolve_UserByUsername(t *testing.T) {
	client := &fakeTableClient{
		responses: map[string][]snow.Record{
			"user_name=jdoe": {{"sys_id": "user123"}},
		},
	}
	r := newResolver(t, client)

	result, err := r.Resolve(context.Background(), KindUser, "jdoe")

	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, "user123", result.CanonicalID)
	assert.Equal(t, "user_name", result.MatchedField)
	assert.Equal(t, []string{"user_name=jdoe"}, client.calls)
}

func TestResolve_UserFallsBackToEmail(t *testing.T) {
	client := &fakeTableClient{
		responses: map[string][]snow.Record{
			"email=jdoe@example.com": {{"sys_id": "user456"}},
		},
	}
	r := newResolver(t, client)

	result, err := r.Resolve(context.Background(), KindUser, "jdoe@example.com")

	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, "user456", result.CanonicalID)
	assert.Equal(t, "email", result.MatchedField)
	assert.Equal(t, []string{"user_name=jdoe@example.com", "email=jdoe@example.com"}, client.calls)
}

func TestResolve_AssetCandidateOrder(t *testing.T) {
	client := &fakeTableClient{
		responses: map[string][]snow.Record{
			"display_nameLIKEThinkPad": {{"sys_id": "asset789"}},
		},
	}
	r := newResolver(t, client)

	result, err := r.Resolve(context.Background(), KindAsset, "ThinkPad")

	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, "display_name", result.MatchedField)
	assert.Equal(t, []string{
		"asset_tag=ThinkPad",
		"serial_number=ThinkPad",
		"display_nameLIKEThinkPad",
	}, client.calls)
}

func TestResolve_CatalogItemCandidateOrder(t *testing.T) {
	client := &fakeTableClient{}
	r := newResolver(t, client)

	result, err := r.Resolve(context.Background(), KindCatalogItem, "Standard Laptop")

	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Equal(t, []string{
		"name=Standard Laptop",
		"sys_id=Standard Laptop",
		"short_descriptionLIKEStandard Laptop",
	}, client.calls)
}

func TestResolve_TransportErrorIsNoMatchForCandidate(t *testing.T) {
	client := &fakeTableClient{
		errors: map[string]error{
			"user_name=jdoe": fmt.Errorf("connection refused"),
		},
		responses: map[string][]snow.Record{
			"email=jdoe": {{"sys_id": "user123"}},
		},
	}
	r := newResolver(t, client)

	result, err := r.Resolve(context.Background(), KindUser, "jdoe")

	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, "email", result.MatchedField)
}

func TestResolve_ExhaustionIsNotAnError(t *testing.T) {
	client := &fakeTableClient{}
	r := newResolver(t, client)

	result, err := r.Resolve(context.Background(), KindUser, "nobody")

	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Empty(t, result.CanonicalID)
}

func TestResolve_UnknownKind(t *testing.T) {
	r := newResolver(t, &fakeTableClient{})

	_, err := r.Resolve(context.Background(), EntityKind("group"), "helpdesk")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
}

func TestResolve_SeparatorInInput(t *testing.T) {
	client := &fakeTableClient{}
	r := newResolver(t, client)

	_, err := r.Resolve(context.Background(), KindUser, "jdoe^ORuser_name=admin")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedInput))
	assert.Empty(t, client.calls)
}

func TestIsSysID(t *testing.T) {
	assert.True(t, IsSysID("a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"))
	assert.True(t, IsSysID("A1B2C3D4E5F6A7B8C9D0E1F2A3B4C5D6"))
	assert.False(t, IsSysID("a1b2c3d4"))
	assert.False(t, IsSysID("g1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"))
	assert.False(t, IsSysID(""))
}
