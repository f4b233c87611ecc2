package dataset

// ColumnType is the declared storage type for a dataset column.
type ColumnType int

const (
	Integer ColumnType = iota
	Float
	Text
)

// SQLType returns the SQL type name used when creating the table.
func (t ColumnType) SQLType() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column declares one column of a dataset: the name it gets in the
// database, the CSV header it is read from, and its type.
type Column struct {
	Name   string
	Header string
	Type   ColumnType
}

// Spec is the fixed schema for one dataset. The schemas are declared
// up front rather than inferred, since the source CSVs are stable.
type Spec struct {
	TableName string
	Columns   []Column
}

// Table holds parsed rows for one dataset. Each row is aligned to
// Spec.Columns; a nil cell is a SQL NULL (numeric parse failure).
type Table struct {
	Spec Spec
	Rows [][]any
}

// CensusSpec describes the community-area socioeconomic indicators
// dataset (one row per community area, 77 total).
var CensusSpec = Spec{
	TableName: "CENSUS_DATA",
	Columns: []Column{
		{Name: "COMMUNITY_AREA_NUMBER", Header: "COMMUNITY_AREA_NUMBER", Type: Integer},
		{Name: "COMMUNITY_AREA_NAME", Header: "COMMUNITY_AREA_NAME", Type: Text},
		{Name: "PERCENT_OF_HOUSING_CROWDED", Header: "PERCENT_OF_HOUSING_CROWDED", Type: Float},
		{Name: "PERCENT_HOUSEHOLDS_BELOW_POVERTY", Header: "PERCENT_HOUSEHOLDS_BELOW_POVERTY", Type: Float},
		{Name: "PERCENT_AGED_16_UNEMPLOYED", Header: "PERCENT_AGED_16__UNEMPLOYED", Type: Float},
		{Name: "PERCENT_AGED_25_WITHOUT_HIGH_SCHOOL_DIPLOMA", Header: "PERCENT_AGED_25__WITHOUT_HIGH_SCHOOL_DIPLOMA", Type: Float},
		{Name: "PERCENT_AGED_UNDER_18_OR_OVER_64", Header: "PERCENT_AGED_UNDER_18_OR_OVER_64", Type: Float},
		{Name: "PER_CAPITA_INCOME", Header: "PER_CAPITA_INCOME", Type: Integer},
		{Name: "HARDSHIP_INDEX", Header: "HARDSHIP_INDEX", Type: Integer},
	},
}

// SchoolsSpec describes the public-schools progress report dataset.
// Only the columns the analysis touches are kept.
var SchoolsSpec = Spec{
	TableName: "CHICAGO_PUBLIC_SCHOOLS",
	Columns: []Column{
		{Name: "SCHOOL_ID", Header: "School_ID", Type: Integer},
		{Name: "NAME_OF_SCHOOL", Header: "NAME_OF_SCHOOL", Type: Text},
		{Name: "SCHOOL_TYPE", Header: "Elementary, Middle, or High School", Type: Text},
		{Name: "COMMUNITY_AREA_NUMBER", Header: "COMMUNITY_AREA_NUMBER", Type: Integer},
		{Name: "COMMUNITY_AREA_NAME", Header: "COMMUNITY_AREA_NAME", Type: Text},
		{Name: "SAFETY_SCORE", Header: "SAFETY_SCORE", Type: Integer},
	},
}

// CrimeSpec describes the crime incidents dataset.
var CrimeSpec = Spec{
	TableName: "CHICAGO_CRIME_DATA",
	Columns: []Column{
		{Name: "ID", Header: "ID", Type: Integer},
		{Name: "CASE_NUMBER", Header: "CASE_NUMBER", Type: Text},
		{Name: "PRIMARY_TYPE", Header: "PRIMARY_TYPE", Type: Text},
		{Name: "DESCRIPTION", Header: "DESCRIPTION", Type: Text},
		{Name: "LOCATION_DESCRIPTION", Header: "LOCATION_DESCRIPTION", Type: Text},
		{Name: "COMMUNITY_AREA_NUMBER", Header: "COMMUNITY_AREA_NUMBER", Type: Integer},
		{Name: "YEAR", Header: "YEAR", Type: Integer},
	},
}
