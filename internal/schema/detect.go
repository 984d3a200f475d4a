package schema

import (
	"time"

	"github.com/golang-sql/civil"
)

// Detect maps a normalized value to its TypeClass. The literal strings
// "True" and "False" classify as Boolean.
func Detect(v any) TypeClass {
	switch x := v.(type) {
	case nil:
		return Null
	case bool:
		return Boolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Integer
	case float32, float64:
		return Float
	case string:
		if x == "True" || x == "False" {
			return Boolean
		}
		return String
	case civil.Date:
		return Date
	case civil.DateTime, time.Time:
		return Datetime
	default:
		return Object
	}
}
