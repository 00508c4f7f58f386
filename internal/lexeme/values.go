package lexeme

// ValueName keys the decoded fields a rule attaches to a lexeme.
type ValueName string

const (
	Day1      ValueName = "DAY1"
	Day2      ValueName = "DAY2"
	Hour1     ValueName = "HOUR1"
	Hour2     ValueName = "HOUR2"
	Minute1   ValueName = "MINUTE1"
	Minute2   ValueName = "MINUTE2"
	Day3      ValueName = "DAY3"
	Hour3     ValueName = "HOUR3"
	Day4      ValueName = "DAY4"
	Hour4     ValueName = "HOUR4"
	Value     ValueName = "VALUE"
	Value2    ValueName = "VALUE2"
	MaxValue  ValueName = "MAX_VALUE"
	MinValue  ValueName = "MIN_VALUE"
	Unit      ValueName = "UNIT"
	Direction ValueName = "DIRECTION"
	MinDir    ValueName = "MIN_DIRECTION"
	MaxDir    ValueName = "MAX_DIRECTION"
	Operator  ValueName = "RELATIONAL_OPERATOR"
	Operator2 ValueName = "RELATIONAL_OPERATOR2"
	Tendency  ValueName = "TENDENCY_OPERATOR"
	Runway    ValueName = "RUNWAY"
	Cover     ValueName = "COVER"
	CloudType ValueName = "CLOUD_TYPE"
	Intensity ValueName = "INTENSITY"
	Code      ValueName = "CODE"
	Kind      ValueName = "KIND"
	Prefix    ValueName = "PREFIX"
	Name      ValueName = "NAME"
	Latitude  ValueName = "LATITUDE"
	Longitude ValueName = "LONGITUDE"
	Lower     ValueName = "LOWER"
	Upper     ValueName = "UPPER"
	Speed     ValueName = "SPEED"
	Gust      ValueName = "GUST"
)

// Values holds the decoded fields of a lexeme. Values are ints, strings,
// bools or float64s; nothing is re-derived from the raw token implicitly.
type Values map[ValueName]any

// Int returns the int stored under name.
func (v Values) Int(name ValueName) (int, bool) {
	i, ok := v[name].(int)
	return i, ok
}

// IntOr returns the int stored under name or def when absent.
func (v Values) IntOr(name ValueName, def int) int {
	if i, ok := v.Int(name); ok {
		return i
	}
	return def
}

// String returns the string stored under name, or "".
func (v Values) String(name ValueName) string {
	s, _ := v[name].(string)
	return s
}

// Float returns the float64 stored under name.
func (v Values) Float(name ValueName) (float64, bool) {
	f, ok := v[name].(float64)
	return f, ok
}

// Bool returns the bool stored under name.
func (v Values) Bool(name ValueName) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) clone() Values {
	if v == nil {
		return nil
	}
	c := make(Values, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}
