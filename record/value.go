package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type Kind int

const (
	KindString  Kind = 1
	KindInt     Kind = 2
	KindFloat   Kind = 3
	KindBool    Kind = 4
	KindDate    Kind = 5
	KindInstant Kind = 6
	KindMapping Kind = 7
	KindList    Kind = 8
)

// dateLayout is the wire form for calendar dates. Instants never use it;
// they always go out as epoch seconds.
const dateLayout = "2006-01-02"

// Value is a closed variant over the field types a record may carry. The
// zero Value is invalid; build values through the constructors.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	t    time.Time
	m    *Fields
	l    []*Fields
}

func String(s string) Value  { return Value{kind: KindString, str: s} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// Instant holds a wall-clock point in time; it serializes as epoch seconds.
func Instant(t time.Time) Value { return Value{kind: KindInstant, t: t} }

func Mapping(f *Fields) Value { return Value{kind: KindMapping, m: f} }
func List(fs []*Fields) Value { return Value{kind: KindList, l: fs} }

// ValueOf converts common Go types into a Value. time.Time maps to Instant;
// use Date explicitly for calendar dates.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case bool:
		return Bool(x), nil
	case time.Time:
		return Instant(x), nil
	case *Fields:
		return Mapping(x), nil
	case []*Fields:
		return List(x), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() string {
	if v.kind != KindString {
		panic("value is not a string")
	}
	return v.str
}

func (v Value) AsInt() int64 {
	if v.kind != KindInt {
		panic("value is not an int")
	}
	return v.i
}

func (v Value) AsFloat() float64 {
	if v.kind != KindFloat {
		panic("value is not a float")
	}
	return v.f
}

func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic("value is not a bool")
	}
	return v.b
}

func (v Value) AsTime() time.Time {
	if v.kind != KindDate && v.kind != KindInstant {
		panic("value is not a date or instant")
	}
	return v.t
}

func (v Value) AsMapping() *Fields {
	if v.kind != KindMapping {
		panic("value is not a mapping")
	}
	return v.m
}

func (v Value) AsList() []*Fields {
	if v.kind != KindList {
		panic("value is not a list")
	}
	return v.l
}

// Empty reports whether the value is unusable as an identity: unset, an
// empty string, or an empty nested container.
func (v Value) Empty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindMapping:
		return v.m == nil || v.m.Len() == 0
	case KindList:
		return len(v.l) == 0
	case 0:
		return true
	default:
		return false
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	case KindDate:
		return json.Marshal(v.t.Format(dateLayout))
	case KindInstant:
		return strconv.AppendInt(nil, v.t.Unix(), 10), nil
	case KindMapping:
		return json.Marshal(v.m)
	case KindList:
		return json.Marshal(v.l)
	}
	return nil, fmt.Errorf("cannot marshal value of kind %d", v.kind)
}

func (v Value) String() string {
	bs, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid value kind %d>", v.kind)
	}
	return string(bs)
}
