package rel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	celtypes "github.com/google/cel-go/common/types"

	"github.com/shibukawa/snapcatalog/types"
)

// Opaque CEL types returned by default functions that have no CEL primitive
var (
	celDateType = cel.OpaqueType("date")
	celTimeType = cel.OpaqueType("time")
	celUUIDType = cel.OpaqueType("uuid")
)

// DefaultFunctions are the zero-argument functions available to expression defaults.
var DefaultFunctions = []string{"current_timestamp", "current_date", "current_time", "uuid", "current_user"}

var defaultExprEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
		cel.Function("current_timestamp", cel.Overload("current_timestamp_void", []*cel.Type{}, cel.TimestampType)),
		cel.Function("current_date", cel.Overload("current_date_void", []*cel.Type{}, celDateType)),
		cel.Function("current_time", cel.Overload("current_time_void", []*cel.Type{}, celTimeType)),
		cel.Function("uuid", cel.Overload("uuid_void", []*cel.Type{}, celUUIDType)),
		cel.Function("current_user", cel.Overload("current_user_void", []*cel.Type{}, cel.StringType)),
	)
})

// CheckExpression compiles expr and verifies its result can populate a column of type t.
func CheckExpression(expr string, t types.Type) error {
	if expr == "" {
		return fmt.Errorf("%w: empty default expression", ErrIncompatibleDefaultValue)
	}

	env, err := defaultExprEnv()
	if err != nil {
		return fmt.Errorf("failed to create default expression environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("%w: invalid default expression %q: %w", ErrIncompatibleDefaultValue, expr, issues.Err())
	}

	out := ast.OutputType()
	if !celAssignable(out, t) {
		return fmt.Errorf("%w: default expression %q yields %s, not assignable to %s", ErrIncompatibleDefaultValue, expr, out, t)
	}

	return nil
}

func celAssignable(out *cel.Type, t types.Type) bool {
	switch out.Kind() {
	case celtypes.BoolKind:
		return t.Kind() == types.KindBoolean
	case celtypes.IntKind, celtypes.UintKind:
		return t.IsNumeric()
	case celtypes.DoubleKind:
		return t.Kind() == types.KindFloat || t.Kind() == types.KindDouble || t.Kind() == types.KindDecimal
	case celtypes.StringKind:
		return t.IsCharacter() || t.Kind() == types.KindJSON
	case celtypes.BytesKind:
		return t.Kind() == types.KindBinary
	case celtypes.TimestampKind:
		return t.Kind() == types.KindTimestamp || t.Kind() == types.KindTimestampTZ
	case celtypes.OpaqueKind:
		switch out.TypeName() {
		case celDateType.TypeName():
			return t.Kind() == types.KindDate
		case celTimeType.TypeName():
			return t.Kind() == types.KindTime
		case celUUIDType.TypeName():
			return t.Kind() == types.KindUUID || t.Kind() == types.KindString ||
				(t.Kind() == types.KindVarChar && t.Length() >= 36)
		}
	}

	return false
}
