package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsUserID(t *testing.T) {
	records := []*Fields{New().Set("user_id", Int(123456))}
	assert.Nil(t, Validate(records))
}

func TestValidateAcceptsDeviceID(t *testing.T) {
	records := []*Fields{New().Set("device_id", String("fu123"))}
	assert.Nil(t, Validate(records))
}

func TestValidateAcceptsCamelCaseKeys(t *testing.T) {
	assert.Nil(t, Validate([]*Fields{New().Set("userId", Int(1))}))
	assert.Nil(t, Validate([]*Fields{New().Set("deviceId", String("d"))}))
}

func TestValidateRejectsMissingIdentity(t *testing.T) {
	broken := New().Set("first_name", String("Moe"))
	err := Validate([]*Fields{broken})

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "No device_id or user_id in hash")
	assert.Contains(t, err.Error(), "Moe")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, broken, verr.Record)
}

func TestValidateRejectsEmptyIdentity(t *testing.T) {
	err := Validate([]*Fields{New().Set("user_id", String(""))})
	assert.NotNil(t, err)
}

func TestValidateFailsWholeBatch(t *testing.T) {
	records := []*Fields{
		New().Set("user_id", Int(123456)).Set("first_name", String("Mike")),
		New().Set("first_name", String("Moe")),
	}
	err := Validate(records)
	assert.NotNil(t, err)
}

func TestIdentityPrefersUserKey(t *testing.T) {
	f := New().
		Set("user_id", Int(42)).
		Set("device_id", String("d1"))

	v, user, ok := Identity(f)
	assert.True(t, ok)
	assert.True(t, user)
	assert.Equal(t, int64(42), v.AsInt())
}
