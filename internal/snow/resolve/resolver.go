// Package resolve maps free-form identifiers (login names, emails, asset
// tags, catalog item names) to canonical 32-char hex sys_ids.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"servicenow-toolkit/internal/common/errors"
	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/common/metrics"
	"servicenow-toolkit/internal/snow"
	"servicenow-toolkit/internal/snow/query"
)

// EntityKind selects the lookup table and candidate fields.
type EntityKind string

const (
	KindUser        EntityKind = "user"
	KindAsset       EntityKind = "asset"
	KindCatalogItem EntityKind = "catalog_item"
)

// Result is the outcome of a resolution attempt. Resolved=false with a nil
// error means no record matched; that is a normal outcome, not a failure.
type Result struct {
	Resolved     bool
	CanonicalID  string
	MatchedField string
}

// candidate is one field lookup in the resolution sequence.
type candidate struct {
	field string
	op    query.Op
}

// kindSpec describes how one entity kind resolves.
type kindSpec struct {
	table      string
	candidates []candidate
	// isCanonicalID short-circuits resolution without any network call.
	isCanonicalID func(string) bool
}

var kindSpecs = map[EntityKind]kindSpec{
	KindUser: {
		table: "sys_user",
		candidates: []candidate{
			{field: "user_name", op: query.Equals},
			{field: "email", op: query.Equals},
		},
		isCanonicalID: IsSysID,
	},
	KindAsset: {
		table: "alm_asset",
		candidates: []candidate{
			{field: "asset_tag", op: query.Equals},
			{field: "serial_number", op: query.Equals},
			{field: "display_name", op: query.Like},
		},
		isCanonicalID: IsSysID,
	},
	KindCatalogItem: {
		table: "sc_cat_item",
		candidates: []candidate{
			{field: "name", op: query.Equals},
			{field: "sys_id", op: query.Equals},
			{field: "short_description", op: query.Like},
		},
		isCanonicalID: IsSysID,
	},
}

// IsSysID reports whether s is a 32-char hex string. Hex digit case does not
// matter; instances return lowercase but accept either.
func IsSysID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// TableClient is the slice of the snow client the resolver needs.
type TableClient interface {
	GetRecords(ctx context.Context, table string, q snow.RecordQuery) ([]snow.Record, error)
}

// Resolver tries an ordered sequence of field lookups per entity kind.
type Resolver struct {
	client TableClient
	logger logger.Logger
}

func NewResolver(client TableClient, log logger.Logger) *Resolver {
	return &Resolver{client: client, logger: log}
}

// Resolve maps raw to a canonical sys_id for the given kind.
//
// Empty input is rejected before any network call. Input that already looks
// like a sys_id is returned unchanged without any lookup. Otherwise each
// candidate field is tried in order with a limit-1 query; the first non-empty
// result wins. A failed lookup on one candidate counts as no-match for that
// field and the sequence continues.
func (r *Resolver) Resolve(ctx context.Context, kind EntityKind, raw string) (Result, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return Result{}, errors.NewMalformedInputError(fmt.Sprintf("unknown entity kind: %q", kind))
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{}, errors.NewMalformedInputError("empty identifier")
	}

	if spec.isCanonicalID(trimmed) {
		metrics.ResolverLookups.WithLabelValues(string(kind), "canonical").Inc()
		return Result{Resolved: true, CanonicalID: trimmed, MatchedField: "sys_id"}, nil
	}

	for _, cand := range spec.candidates {
		q, err := query.BuildQuery([]query.Field{
			{Name: cand.field, Op: cand.op, Value: trimmed},
		})
		if err != nil {
			// Reserved separators in the input cannot match anything.
			return Result{}, err
		}

		records, err := r.client.GetRecords(ctx, spec.table, snow.RecordQuery{
			Query:  q,
			Fields: []string{"sys_id"},
			Limit:  1,
		})
		if err != nil {
			r.logger.Warn("resolver lookup failed, trying next candidate", map[string]interface{}{
				"kind":  string(kind),
				"field": cand.field,
				"error": err.Error(),
			})
			continue
		}

		if len(records) > 0 {
			sysID := records[0].SysID()
			if sysID != "" {
				metrics.ResolverLookups.WithLabelValues(string(kind), "resolved").Inc()
				return Result{Resolved: true, CanonicalID: sysID, MatchedField: cand.field}, nil
			}
		}
	}

	metrics.ResolverLookups.WithLabelValues(string(kind), "not_found").Inc()
	r.logger.Debug("identifier did not resolve", map[string]interface{}{
		"kind":  string(kind),
		"input": trimmed,
	})
	return Result{Resolved: false}, nil
}
