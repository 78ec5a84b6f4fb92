// Package filter describes structured list filters accepted by the query API.
package filter

// ComparisonType enumerates the supported comparison operators.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	Less           ComparisonType = "lt"
	Greater        ComparisonType = "gt"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item is a single filter condition. Field names are snake_case column names;
// repositories validate them against a whitelist before building SQL.
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}
