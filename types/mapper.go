package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

var ErrUnsupportedDialect = snapcatalog.ErrUnsupportedDialect

// Mapper maps database-specific column types to catalog types
type Mapper interface {
	MapType(dbType string) Type
	Dialect() snapcatalog.Dialect
}

// NewMapper creates a new type mapper for the specified dialect
func NewMapper(dialect snapcatalog.Dialect) (Mapper, error) {
	switch dialect {
	case snapcatalog.DialectPostgres:
		return NewPostgreSQLMapper(), nil
	case snapcatalog.DialectMySQL, snapcatalog.DialectMariaDB:
		return NewMySQLMapper(), nil
	case snapcatalog.DialectSQLite:
		return NewSQLiteMapper(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}
}

// dbTypePattern splits "numeric(10, 2) unsigned" into base name, parameter list and trailing modifiers.
var dbTypePattern = regexp.MustCompile(`^([a-z0-9_ ]+?)\s*(?:\(([^)]*)\)\s*([a-z ]*))?$`)

type dbType struct {
	base      string
	params    []int
	modifiers string
}

func splitDBType(raw string) dbType {
	normalized := strings.Join(strings.Fields(strings.ToLower(raw)), " ")

	m := dbTypePattern.FindStringSubmatch(normalized)
	if m == nil {
		return dbType{base: normalized}
	}

	result := dbType{base: strings.TrimSpace(m[1]), modifiers: strings.TrimSpace(m[3])}

	if m[2] != "" {
		for _, part := range strings.Split(m[2], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				// enum('a','b') and friends carry no numeric parameters
				result.params = nil
				break
			}

			result.params = append(result.params, n)
		}
	}

	return result
}

// withParams builds a Type of kind from database parameters, falling back to
// the unparameterized form when the parameters are missing or out of range.
func withParams(kind Kind, params []int) Type {
	switch kind {
	case KindDecimal:
		if t, err := Of(kind, params...); err == nil && len(params) > 0 {
			return t
		}
		// unconstrained numeric
		return Must(Decimal(MaxDecimalPrecision, 10))
	case KindTime, KindTimestamp, KindTimestampTZ:
		if t, err := Of(kind, params...); err == nil {
			return t
		}

		return Must(Of(kind))
	case KindVarChar:
		if t, err := Of(kind, params...); err == nil {
			return t
		}

		return String()
	case KindFixedChar, KindFixed:
		if t, err := Of(kind, params...); err == nil {
			return t
		}

		return Must(Of(kind, 1))
	default:
		t, err := Of(kind)
		if err != nil {
			return String()
		}

		return t
	}
}

// PostgreSQLMapper handles PostgreSQL type mapping
type PostgreSQLMapper struct {
	typeMap map[string]Kind
}

// NewPostgreSQLMapper creates a new PostgreSQL type mapper
func NewPostgreSQLMapper() *PostgreSQLMapper {
	return &PostgreSQLMapper{
		typeMap: map[string]Kind{
			// Integer types
			"smallint":    KindShort,
			"int2":        KindShort,
			"smallserial": KindShort,
			"integer":     KindInteger,
			"int":         KindInteger,
			"int4":        KindInteger,
			"serial":      KindInteger,
			"bigint":      KindLong,
			"int8":        KindLong,
			"bigserial":   KindLong,

			// String types
			"text":              KindString,
			"varchar":           KindVarChar,
			"character varying": KindVarChar,
			"character":         KindFixedChar,
			"char":              KindFixedChar,
			"bpchar":            KindFixedChar,

			// Numeric types
			"numeric":          KindDecimal,
			"decimal":          KindDecimal,
			"real":             KindFloat,
			"float4":           KindFloat,
			"double precision": KindDouble,
			"float8":           KindDouble,
			"float":            KindDouble,

			// Boolean types
			"boolean": KindBoolean,
			"bool":    KindBoolean,

			// Date/Time types
			"date":                        KindDate,
			"time":                        KindTime,
			"time without time zone":      KindTime,
			"time with time zone":         KindTime,
			"timetz":                      KindTime,
			"timestamp":                   KindTimestamp,
			"timestamp without time zone": KindTimestamp,
			"timestamp with time zone":    KindTimestampTZ,
			"timestamptz":                 KindTimestampTZ,

			// JSON types
			"json":  KindJSON,
			"jsonb": KindJSON,

			// Binary types
			"bytea": KindBinary,

			"uuid": KindUUID,
		},
	}
}

func (m *PostgreSQLMapper) Dialect() snapcatalog.Dialect { return snapcatalog.DialectPostgres }

// MapType maps a PostgreSQL type to a catalog type
func (m *PostgreSQLMapper) MapType(raw string) Type {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	// Array types: int[] and the information_schema spelling _int4
	if base, ok := strings.CutSuffix(normalized, "[]"); ok {
		return m.listOf(base)
	}

	if strings.HasPrefix(normalized, "_") {
		return m.listOf(normalized[1:])
	}

	t := splitDBType(normalized)

	// timestamp(3) with time zone keeps its modifiers after the parameter list
	name := t.base
	if t.modifiers != "" {
		name = t.base + " " + t.modifiers
	}

	kind, ok := m.typeMap[name]
	if !ok {
		kind, ok = m.typeMap[t.base]
	}

	if !ok {
		return String()
	}

	return withParams(kind, t.params)
}

func (m *PostgreSQLMapper) listOf(base string) Type {
	elem := m.MapType(base)
	if elem.Kind() == KindList {
		// multidimensional arrays flatten to their element type
		return elem
	}

	return Must(List(elem, true))
}

// MySQLMapper handles MySQL and MariaDB type mapping
type MySQLMapper struct {
	typeMap map[string]Kind
}

// NewMySQLMapper creates a new MySQL type mapper
func NewMySQLMapper() *MySQLMapper {
	return &MySQLMapper{
		typeMap: map[string]Kind{
			// Integer types
			"tinyint":   KindByte,
			"smallint":  KindShort,
			"mediumint": KindInteger,
			"int":       KindInteger,
			"integer":   KindInteger,
			"bigint":    KindLong,
			"year":      KindShort,

			// String types
			"varchar":    KindVarChar,
			"char":       KindFixedChar,
			"text":       KindString,
			"tinytext":   KindString,
			"mediumtext": KindString,
			"longtext":   KindString,
			"enum":       KindString,
			"set":        KindString,

			// Numeric types
			"decimal": KindDecimal,
			"numeric": KindDecimal,
			"float":   KindFloat,
			"double":  KindDouble,
			"real":    KindDouble,

			// Boolean types
			"boolean": KindBoolean,
			"bool":    KindBoolean,

			// Date/Time types
			"date":      KindDate,
			"time":      KindTime,
			"datetime":  KindTimestamp,
			"timestamp": KindTimestamp,

			// JSON types
			"json": KindJSON,

			// Binary types
			"blob":       KindBinary,
			"tinyblob":   KindBinary,
			"mediumblob": KindBinary,
			"longblob":   KindBinary,
			"varbinary":  KindBinary,
			"binary":     KindFixed,
		},
	}
}

func (m *MySQLMapper) Dialect() snapcatalog.Dialect { return snapcatalog.DialectMySQL }

// MapType maps a MySQL type to a catalog type
func (m *MySQLMapper) MapType(raw string) Type {
	t := splitDBType(raw)

	base, unsigned := strings.CutSuffix(t.base, " unsigned")
	unsigned = unsigned || strings.Contains(t.modifiers, "unsigned")

	// tinyint(1) is how MySQL spells boolean
	if base == "tinyint" && len(t.params) == 1 && t.params[0] == 1 {
		return Boolean()
	}

	kind, ok := m.typeMap[base]
	if !ok {
		return String()
	}

	// unsigned integers widen to the next signed kind
	if unsigned {
		switch kind {
		case KindByte:
			return Short()
		case KindShort:
			return Integer()
		case KindInteger:
			return Long()
		case KindLong:
			return Must(Decimal(20, 0))
		}
	}

	// display widths such as int(11) are not type parameters
	if (Type{kind: kind}).IsIntegral() {
		return Type{kind: kind}
	}

	return withParams(kind, t.params)
}

// SQLiteMapper handles SQLite type mapping
type SQLiteMapper struct {
	typeMap map[string]Kind
}

// NewSQLiteMapper creates a new SQLite type mapper
func NewSQLiteMapper() *SQLiteMapper {
	return &SQLiteMapper{
		typeMap: map[string]Kind{
			// Integer types; SQLite integers are 64-bit
			"integer":  KindLong,
			"int":      KindLong,
			"bigint":   KindLong,
			"smallint": KindShort,
			"tinyint":  KindByte,

			// String types
			"text":      KindString,
			"clob":      KindString,
			"varchar":   KindVarChar,
			"nvarchar":  KindVarChar,
			"char":      KindFixedChar,
			"nchar":     KindFixedChar,
			"character": KindFixedChar,

			// Numeric types
			"real":    KindDouble,
			"double":  KindDouble,
			"float":   KindDouble,
			"numeric": KindDecimal,
			"decimal": KindDecimal,

			// Boolean types
			"boolean": KindBoolean,
			"bool":    KindBoolean,

			// Date/Time types
			"date":      KindDate,
			"time":      KindTime,
			"datetime":  KindTimestamp,
			"timestamp": KindTimestamp,

			"json": KindJSON,
			"uuid": KindUUID,

			// Binary types
			"blob": KindBinary,
		},
	}
}

func (m *SQLiteMapper) Dialect() snapcatalog.Dialect { return snapcatalog.DialectSQLite }

// MapType maps a SQLite type to a catalog type
func (m *SQLiteMapper) MapType(raw string) Type {
	t := splitDBType(raw)

	// Handle empty type (SQLite allows this)
	if t.base == "" {
		return String()
	}

	if kind, ok := m.typeMap[t.base]; ok {
		return withParams(kind, t.params)
	}

	// Handle compound types (e.g., "unsigned big int", "varying character")
	for _, word := range strings.Fields(t.base) {
		if kind, ok := m.typeMap[word]; ok {
			return withParams(kind, t.params)
		}
	}

	// SQLite is very flexible with types, default to string
	return String()
}

// ToDDL renders t as a column type for dialect.
func ToDDL(dialect snapcatalog.Dialect, t Type) (string, error) {
	if !t.IsValid() {
		return "", fmt.Errorf("%w: cannot render the zero type", ErrUnknownType)
	}

	switch dialect {
	case snapcatalog.DialectPostgres:
		return postgresDDL(t)
	case snapcatalog.DialectMySQL, snapcatalog.DialectMariaDB:
		return mysqlDDL(t)
	case snapcatalog.DialectSQLite:
		return sqliteDDL(t), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}
}

func precisionSuffix(t Type) string {
	if p, ok := t.Precision(); ok {
		return "(" + strconv.Itoa(p) + ")"
	}

	return ""
}

func postgresDDL(t Type) (string, error) {
	switch t.Kind() {
	case KindBoolean:
		return "BOOLEAN", nil
	case KindByte, KindShort:
		return "SMALLINT", nil
	case KindInteger:
		return "INTEGER", nil
	case KindLong:
		return "BIGINT", nil
	case KindFloat:
		return "REAL", nil
	case KindDouble:
		return "DOUBLE PRECISION", nil
	case KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", t.precision, t.scale), nil
	case KindDate:
		return "DATE", nil
	case KindTime:
		return "TIME" + precisionSuffix(t), nil
	case KindTimestamp:
		return "TIMESTAMP" + precisionSuffix(t), nil
	case KindTimestampTZ:
		return "TIMESTAMP" + precisionSuffix(t) + " WITH TIME ZONE", nil
	case KindString:
		return "TEXT", nil
	case KindVarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.length), nil
	case KindFixedChar:
		return fmt.Sprintf("CHAR(%d)", t.length), nil
	case KindUUID:
		return "UUID", nil
	case KindBinary, KindFixed:
		return "BYTEA", nil
	case KindJSON:
		return "JSONB", nil
	case KindList:
		elem, _ := t.Elem()

		inner, err := postgresDDL(elem)
		if err != nil {
			return "", err
		}

		return inner + "[]", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownType, t.Kind())
	}
}

func mysqlDDL(t Type) (string, error) {
	switch t.Kind() {
	case KindBoolean:
		return "TINYINT(1)", nil
	case KindByte:
		return "TINYINT", nil
	case KindShort:
		return "SMALLINT", nil
	case KindInteger:
		return "INT", nil
	case KindLong:
		return "BIGINT", nil
	case KindFloat:
		return "FLOAT", nil
	case KindDouble:
		return "DOUBLE", nil
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.precision, t.scale), nil
	case KindDate:
		return "DATE", nil
	case KindTime:
		return "TIME" + precisionSuffix(t), nil
	case KindTimestamp, KindTimestampTZ:
		return "DATETIME" + precisionSuffix(t), nil
	case KindString:
		return "TEXT", nil
	case KindVarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.length), nil
	case KindFixedChar:
		return fmt.Sprintf("CHAR(%d)", t.length), nil
	case KindUUID:
		return "CHAR(36)", nil
	case KindBinary:
		return "BLOB", nil
	case KindFixed:
		return fmt.Sprintf("BINARY(%d)", t.length), nil
	case KindJSON, KindList:
		return "JSON", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownType, t.Kind())
	}
}

func sqliteDDL(t Type) string {
	switch {
	case t.IsIntegral() || t.Kind() == KindBoolean:
		return "INTEGER"
	case t.Kind() == KindFloat || t.Kind() == KindDouble:
		return "REAL"
	case t.Kind() == KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", t.precision, t.scale)
	case t.Kind() == KindVarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.length)
	case t.Kind() == KindFixedChar:
		return fmt.Sprintf("CHAR(%d)", t.length)
	case t.Kind() == KindBinary || t.Kind() == KindFixed:
		return "BLOB"
	case t.Kind() == KindDate:
		return "DATE"
	case t.Kind() == KindTimestamp || t.Kind() == KindTimestampTZ:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
