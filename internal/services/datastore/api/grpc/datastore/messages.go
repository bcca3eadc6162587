package datastore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Collection names.
const (
	CollectionEvents         = "events"
	CollectionParticipations = "participations"
	CollectionNews           = "news"
	CollectionDiscussions    = "discussions"
	CollectionContributors   = "contributors"
	CollectionCommunityStats = "community_stats"
)

// ProcedureRedeemStarterPack grants the one-time starter pack to the caller.
const ProcedureRedeemStarterPack = "redeem_starter_pack"

// Row is one collection record as carried on the wire. Timestamps are
// RFC 3339 strings and numbers are float64.
type Row = map[string]any

// SelectRequest reads rows from one collection.
type SelectRequest struct {
	Collection string
	Filters    Row
	// OrderBy uses AIP-132 syntax, for example "start_date asc".
	OrderBy string
	Limit   int
}

// InsertRequest writes one row.
type InsertRequest struct {
	Collection string
	Row        Row
}

// DeleteRequest removes the rows matching Filters.
type DeleteRequest struct {
	Collection string
	Filters    Row
}

// CallRequest invokes a named procedure.
type CallRequest struct {
	Procedure string
	Args      Row
}

func (r SelectRequest) toStruct() (*structpb.Struct, error) {
	fields := Row{
		"collection": r.Collection,
		"filters":    nonNilRow(r.Filters),
	}
	if r.OrderBy != "" {
		fields["order_by"] = r.OrderBy
	}
	if r.Limit > 0 {
		fields["limit"] = r.Limit
	}
	return structpb.NewStruct(fields)
}

func (r InsertRequest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(Row{"collection": r.Collection, "row": nonNilRow(r.Row)})
}

func (r DeleteRequest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(Row{"collection": r.Collection, "filters": nonNilRow(r.Filters)})
}

func (r CallRequest) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(Row{"procedure": r.Procedure, "args": nonNilRow(r.Args)})
}

func parseSelect(in *structpb.Struct) (SelectRequest, error) {
	m := in.AsMap()
	req := SelectRequest{Collection: trimmed(m, "collection"), OrderBy: trimmed(m, "order_by")}
	filters, err := rowField(m, "filters")
	if err != nil {
		return SelectRequest{}, err
	}
	req.Filters = filters
	if v, ok := m["limit"]; ok && v != nil {
		n, ok := v.(float64)
		if !ok || n < 0 || n != math.Trunc(n) {
			return SelectRequest{}, fieldError("limit")
		}
		req.Limit = int(n)
	}
	return req, nil
}

func parseInsert(in *structpb.Struct) (InsertRequest, error) {
	m := in.AsMap()
	row, err := rowField(m, "row")
	if err != nil {
		return InsertRequest{}, err
	}
	return InsertRequest{Collection: trimmed(m, "collection"), Row: row}, nil
}

func parseDelete(in *structpb.Struct) (DeleteRequest, error) {
	m := in.AsMap()
	filters, err := rowField(m, "filters")
	if err != nil {
		return DeleteRequest{}, err
	}
	return DeleteRequest{Collection: trimmed(m, "collection"), Filters: filters}, nil
}

func parseCall(in *structpb.Struct) (CallRequest, error) {
	m := in.AsMap()
	args, err := rowField(m, "args")
	if err != nil {
		return CallRequest{}, err
	}
	return CallRequest{Procedure: trimmed(m, "procedure"), Args: args}, nil
}

func rowField(m Row, key string) (Row, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return Row{}, nil
	}
	row, ok := v.(map[string]any)
	if !ok {
		return nil, fieldError(key)
	}
	return row, nil
}

func trimmed(m Row, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func nonNilRow(r Row) Row {
	if r == nil {
		return Row{}
	}
	return r
}

// String returns the string value at key, or "" when absent or not a string.
func String(r Row, key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the numeric value at key truncated to int.
func Int(r Row, key string) int {
	n, _ := r[key].(float64)
	return int(n)
}

// Bool returns the boolean value at key.
func Bool(r Row, key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Time parses the RFC 3339 timestamp at key. Absent or malformed values
// yield the zero time.
func Time(r Row, key string) time.Time {
	s, _ := r[key].(string)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Strings returns the string elements of the list at key.
func Strings(r Row, key string) []string {
	list, _ := r[key].([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Rows returns the object elements of the list at key.
func Rows(r Row, key string) []Row {
	list, _ := r[key].([]any)
	out := make([]Row, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// StringMap returns the string values of the object at key.
func StringMap(r Row, key string) map[string]string {
	m, _ := r[key].(map[string]any)
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case string:
			out[k] = v
		case nil:
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
