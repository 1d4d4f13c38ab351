package schema

import (
	"fmt"
	"strings"

	"github.com/relloyd/stageload/constants"
)

// Mapper converts semantic field types into store-specific column types for CREATE TABLE DDL.
type Mapper interface {
	Map(t SemanticType) string
	SurrogateKey(name string) string
}

type dataTypeMapping struct {
	SemanticType SemanticType
	TargetType   string
}

var PostgresDataTypeMapping = []dataTypeMapping{
	{TypeDate, "DATE"},
	{TypeTimestamp, "TIMESTAMP"},
	{TypeText, "TEXT"},
	{TypeFloat, "FLOAT"},
	{TypeInteger, "BIGINT"},
	{TypeBoolInt, "INTEGER"},
}

var SqlServerDataTypeMapping = []dataTypeMapping{
	{TypeDate, "DATE"},
	{TypeTimestamp, "DATETIME2"},
	{TypeText, "NVARCHAR(MAX)"},
	{TypeFloat, "FLOAT"},
	{TypeInteger, "BIGINT"},
	{TypeBoolInt, "INT"},
}

var SnowflakeDataTypeMapping = []dataTypeMapping{
	{TypeDate, "DATE"},
	{TypeTimestamp, "TIMESTAMP_NTZ"},
	{TypeText, "VARCHAR"},
	{TypeFloat, "FLOAT"},
	{TypeInteger, "NUMBER(38,0)"},
	{TypeBoolInt, "NUMBER(1,0)"},
}

// dataTypeMap implements Mapper.
type dataTypeMap struct {
	mapTypes     map[SemanticType]string
	surrogateFmt string
}

func newDataTypeMapper(m []dataTypeMapping, surrogateFmt string) Mapper {
	retval := dataTypeMap{mapTypes: make(map[SemanticType]string), surrogateFmt: surrogateFmt}
	for _, v := range m {
		retval.mapTypes[v.SemanticType] = v.TargetType
	}
	return retval
}

// Map returns the column type for t, falling back to the text type.
func (o dataTypeMap) Map(t SemanticType) string {
	v, ok := o.mapTypes[t]
	if !ok {
		return o.mapTypes[TypeText]
	}
	return v
}

func (o dataTypeMap) SurrogateKey(name string) string {
	return fmt.Sprintf(o.surrogateFmt, name)
}

// GetMapper returns the Mapper for the supplied store type.
// PostgREST and Supabase collections are Postgres tables underneath.
func GetMapper(storeType string) (Mapper, error) {
	switch strings.ToLower(storeType) {
	case constants.ConnectionTypePostgres, constants.ConnectionTypePostgrest, constants.ConnectionTypeSupabase:
		return newDataTypeMapper(PostgresDataTypeMapping, "%v BIGSERIAL PRIMARY KEY"), nil
	case constants.ConnectionTypeSqlServer:
		return newDataTypeMapper(SqlServerDataTypeMapping, "%v BIGINT IDENTITY(1,1) PRIMARY KEY"), nil
	case constants.ConnectionTypeSnowflake:
		return newDataTypeMapper(SnowflakeDataTypeMapping, "%v NUMBER AUTOINCREMENT PRIMARY KEY"), nil
	default:
		return nil, fmt.Errorf("unsupported store type %q for DDL generation", storeType)
	}
}

// GetCreateTableDDL renders the CREATE TABLE statement needed to provision s in a store of type storeType.
// Strict fields are NOT NULL.
func GetCreateTableDDL(s *Schema, storeType string) (string, error) {
	m, err := GetMapper(storeType)
	if err != nil {
		return "", err
	}
	cols := make([]string, 0, len(s.Fields)+1)
	if s.SurrogateKey != "" {
		cols = append(cols, m.SurrogateKey(s.SurrogateKey))
	}
	for _, f := range s.Fields {
		c := fmt.Sprintf("%v %v", f.Name, m.Map(f.Type))
		if f.IsStrict() {
			c += " NOT NULL"
		}
		cols = append(cols, c)
	}
	return fmt.Sprintf("CREATE TABLE %v (\n    %v\n);", s.Collection, strings.Join(cols, ",\n    ")), nil
}
