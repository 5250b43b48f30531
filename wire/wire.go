// Package wire converts catalog values to and from protobuf Struct payloads.
// Unset optional fields travel as NullValue, never as zero timestamps.
package wire

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	structpb "google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/opt"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// ErrInvalidPayload indicates a Struct does not describe a valid value.
var ErrInvalidPayload = errors.New("invalid wire payload")

// Field names shared by encoder and decoder
const (
	fieldCreator          = "creator"
	fieldCreateTime       = "create_time"
	fieldLastModifier     = "last_modifier"
	fieldLastModifiedTime = "last_modified_time"

	fieldName          = "name"
	fieldDataType      = "data_type"
	fieldComment       = "comment"
	fieldNullable      = "nullable"
	fieldAutoIncrement = "auto_increment"
	fieldDefault       = "default"
	fieldAudit         = "audit"

	fieldKind = "kind"
	fieldType = "type"
	fieldText = "text"
)

// AuditToStruct encodes info. Timestamps are RFC 3339 strings.
func AuditToStruct(info audit.Info) (*structpb.Struct, error) {
	createTime, err := timestampValue(info.CreateTime())
	if err != nil {
		return nil, err
	}

	lastModifiedTime := structpb.NewNullValue()

	if at, ok := info.LastModifiedTime().Get(); ok {
		lastModifiedTime, err = timestampValue(at)
		if err != nil {
			return nil, err
		}
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldCreator:          structpb.NewStringValue(info.Creator()),
		fieldCreateTime:       createTime,
		fieldLastModifier:     optString(info.LastModifier()),
		fieldLastModifiedTime: lastModifiedTime,
	}}, nil
}

// AuditFromStruct decodes s through the audit builder, so only complete
// audit info is accepted.
func AuditFromStruct(s *structpb.Struct) (audit.Info, error) {
	if s == nil {
		return audit.Info{}, fmt.Errorf("%w: audit payload is nil", ErrInvalidPayload)
	}

	b := audit.NewBuilder()

	if v, ok, err := stringField(s, fieldCreator); err != nil {
		return audit.Info{}, err
	} else if ok {
		b.WithCreator(v)
	}

	if v, ok, err := timeField(s, fieldCreateTime); err != nil {
		return audit.Info{}, err
	} else if ok {
		b.WithCreateTime(v)
	}

	if v, ok, err := stringField(s, fieldLastModifier); err != nil {
		return audit.Info{}, err
	} else if ok {
		b.WithLastModifier(v)
	}

	if v, ok, err := timeField(s, fieldLastModifiedTime); err != nil {
		return audit.Info{}, err
	} else if ok {
		b.WithLastModifiedTime(v)
	}

	return b.Build()
}

// ColumnToStruct encodes c including its default value and audit info.
func ColumnToStruct(c rel.Column) (*structpb.Struct, error) {
	auditValue := structpb.NewNullValue()

	if info, ok := c.AuditInfo().Get(); ok {
		s, err := AuditToStruct(info)
		if err != nil {
			return nil, err
		}

		auditValue = structpb.NewStructValue(s)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldName:          structpb.NewStringValue(c.Name()),
		fieldDataType:      structpb.NewStringValue(c.DataType().String()),
		fieldComment:       structpb.NewStringValue(c.Comment()),
		fieldNullable:      structpb.NewBoolValue(c.Nullable()),
		fieldAutoIncrement: structpb.NewBoolValue(c.AutoIncrement()),
		fieldDefault:       defaultValue(c.DefaultValue()),
		fieldAudit:         auditValue,
	}}, nil
}

// ColumnFromStruct decodes s and re-validates it with rel.Of.
func ColumnFromStruct(s *structpb.Struct, opts ...rel.Option) (rel.Column, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: column payload is nil", ErrInvalidPayload)
	}

	name, _, err := stringField(s, fieldName)
	if err != nil {
		return nil, err
	}

	typeText, ok, err := stringField(s, fieldDataType)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidPayload, fieldDataType)
	}

	dataType, err := types.Parse(typeText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	comment, _, err := stringField(s, fieldComment)
	if err != nil {
		return nil, err
	}

	nullable := s.GetFields()[fieldNullable].GetBoolValue()
	autoIncrement := s.GetFields()[fieldAutoIncrement].GetBoolValue()

	def, err := decodeDefault(s.GetFields()[fieldDefault])
	if err != nil {
		return nil, err
	}

	col, err := rel.Of(name, dataType, comment, nullable, autoIncrement, def, opts...)
	if err != nil {
		return nil, err
	}

	auditValue := s.GetFields()[fieldAudit]
	if auditValue == nil || isNull(auditValue) {
		return col, nil
	}

	info, err := AuditFromStruct(auditValue.GetStructValue())
	if err != nil {
		return nil, err
	}

	return rel.WithAuditInfo(col, info), nil
}

// MarshalColumnJSON renders c as protobuf JSON.
func MarshalColumnJSON(c rel.Column) ([]byte, error) {
	s, err := ColumnToStruct(c)
	if err != nil {
		return nil, err
	}

	return protojson.Marshal(s)
}

// UnmarshalColumnJSON parses protobuf JSON written by MarshalColumnJSON.
func UnmarshalColumnJSON(data []byte, opts ...rel.Option) (rel.Column, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return ColumnFromStruct(&s, opts...)
}

func defaultValue(d rel.Default) *structpb.Value {
	switch d.Kind() {
	case rel.DefaultLiteral:
		lit, _ := d.Literal()
		if lit.IsNull() {
			return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				fieldKind: structpb.NewStringValue(d.Kind().String()),
				fieldType: structpb.NewNullValue(),
				fieldText: structpb.NewNullValue(),
			}})
		}

		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldKind: structpb.NewStringValue(d.Kind().String()),
			fieldType: structpb.NewStringValue(lit.Type().String()),
			fieldText: structpb.NewStringValue(lit.Text()),
		}})
	case rel.DefaultExpression:
		expr, _ := d.Expression()

		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldKind: structpb.NewStringValue(d.Kind().String()),
			fieldText: structpb.NewStringValue(expr),
		}})
	default:
		return structpb.NewNullValue()
	}
}

func decodeDefault(v *structpb.Value) (rel.Default, error) {
	if v == nil || isNull(v) {
		return rel.DefaultValueNotSet, nil
	}

	s := v.GetStructValue()
	if s == nil {
		return rel.Default{}, fmt.Errorf("%w: %s must be an object", ErrInvalidPayload, fieldDefault)
	}

	kindText, _, err := stringField(s, fieldKind)
	if err != nil {
		return rel.Default{}, err
	}

	kind, err := rel.ParseDefaultKind(kindText)
	if err != nil {
		return rel.Default{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	text, hasText, err := stringField(s, fieldText)
	if err != nil {
		return rel.Default{}, err
	}

	switch kind {
	case rel.DefaultExpression:
		return rel.ExpressionDefault(text), nil
	case rel.DefaultLiteral:
		typeText, hasType, err := stringField(s, fieldType)
		if err != nil {
			return rel.Default{}, err
		}

		if !hasType || !hasText {
			return rel.LiteralDefault(rel.NullLiteral()), nil
		}

		t, err := types.Parse(typeText)
		if err != nil {
			return rel.Default{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}

		lit, err := rel.ParseLiteral(t, text)
		if err != nil {
			return rel.Default{}, err
		}

		return rel.LiteralDefault(lit), nil
	default:
		return rel.DefaultValueNotSet, nil
	}
}

func timestampValue(t time.Time) (*structpb.Value, error) {
	ts := timestamppb.New(t)
	if err := ts.CheckValid(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return structpb.NewStringValue(ts.AsTime().Format(time.RFC3339Nano)), nil
}

func optString(v opt.Value[string]) *structpb.Value {
	if s, ok := v.Get(); ok {
		return structpb.NewStringValue(s)
	}

	return structpb.NewNullValue()
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}

// stringField returns the string at key. Missing and null fields report ok=false.
func stringField(s *structpb.Struct, key string) (string, bool, error) {
	v, ok := s.GetFields()[key]
	if !ok || isNull(v) {
		return "", false, nil
	}

	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false, fmt.Errorf("%w: %s must be a string", ErrInvalidPayload, key)
	}

	return sv.StringValue, true, nil
}

func timeField(s *structpb.Struct, key string) (time.Time, bool, error) {
	text, ok, err := stringField(s, key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, key, err)
	}

	return t, true, nil
}
