package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateMarshalsAsCalendarDate(t *testing.T) {
	v := Date(time.Date(2010, 1, 1, 15, 4, 5, 0, time.UTC))
	bs, err := v.MarshalJSON()
	assert.Nil(t, err)
	assert.Equal(t, `"2010-01-01"`, string(bs))
}

func TestInstantMarshalsAsEpochSeconds(t *testing.T) {
	at := time.Date(2015, 5, 1, 1, 2, 3, 500_000_000, time.UTC)
	v := Instant(at)
	bs, err := v.MarshalJSON()
	assert.Nil(t, err)
	assert.Equal(t, "1430442123", string(bs))
}

func TestScalarMarshaling(t *testing.T) {
	cases := map[string]Value{
		`"hi"`:   String("hi"),
		"123456": Int(123456),
		"1.5":    Float(1.5),
		"true":   Bool(true),
	}
	for expected, v := range cases {
		bs, err := v.MarshalJSON()
		assert.Nil(t, err)
		assert.Equal(t, expected, string(bs))
	}
}

func TestValueOfConvertsCommonTypes(t *testing.T) {
	v, err := ValueOf("abc")
	assert.Nil(t, err)
	assert.Equal(t, KindString, v.Kind())

	v, err = ValueOf(42)
	assert.Nil(t, err)
	assert.Equal(t, KindInt, v.Kind())

	v, err = ValueOf(time.Now())
	assert.Nil(t, err)
	assert.Equal(t, KindInstant, v.Kind())

	_, err = ValueOf(struct{}{})
	assert.NotNil(t, err)
}

func TestEmpty(t *testing.T) {
	assert.True(t, Value{}.Empty())
	assert.True(t, String("").Empty())
	assert.False(t, String("x").Empty())
	assert.False(t, Int(0).Empty())
	assert.False(t, Bool(false).Empty())
}
