package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyActionArray(t *testing.T) {
	body := []byte(`{"response": [{"success": true}, {"success": false, "error": {"message": "boom"}}]}`)

	cl, err := Classify(200, body)
	require.Nil(t, err)
	require.Len(t, cl.Results, 2)

	assert.True(t, cl.Success(0))
	assert.False(t, cl.Success(1))
	assert.Equal(t, "", cl.ErrorMessage(0))
	assert.Equal(t, "boom", cl.ErrorMessage(1))
}

func TestClassifyNon2xxStatus(t *testing.T) {
	_, err := Classify(500, []byte(`oops`))

	var bad *BadResponseError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, 500, bad.Status)
	assert.Contains(t, bad.Body, "oops")
}

func TestClassifyInvalidJSON(t *testing.T) {
	_, err := Classify(200, []byte(`{"response": [`))

	var bad *BadResponseError
	assert.ErrorAs(t, err, &bad)
}

func TestClassifyMissingEnvelope(t *testing.T) {
	_, err := Classify(200, []byte(`{"ok": true}`))

	var bad *BadResponseError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, 200, bad.Status)
}

func TestClassifyNonObjectResult(t *testing.T) {
	_, err := Classify(200, []byte(`{"response": [42]}`))

	var bad *BadResponseError
	assert.ErrorAs(t, err, &bad)
}

func TestClassifyReadEnvelopePayload(t *testing.T) {
	body := []byte(`{"response": [{"success": true, "messages": [
		{"id": 5670583287676928, "created": 1440091595.799, "name": "New Message", "active": false, "messageType": "Push Notification"}
	]}]}`)

	cl, err := Classify(200, body)
	require.Nil(t, err)

	raw, ok := cl.Payload("messages")
	require.True(t, ok)
	list, ok := raw.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)

	msg := list[0].(map[string]any)
	assert.Equal(t, int64(5670583287676928), msg["id"])
	assert.Equal(t, 1440091595.799, msg["created"])
	assert.Equal(t, "New Message", msg["name"])
	assert.Equal(t, false, msg["active"])
}

func TestClassifyPayloadAbsent(t *testing.T) {
	cl, err := Classify(200, []byte(`{"response": [{"success": true}]}`))
	require.Nil(t, err)

	_, ok := cl.Payload("messages")
	assert.False(t, ok)
}

func TestNotFound(t *testing.T) {
	body := []byte(`{"response": [{"success": false, "error": {"message": "Message 1234 not found"}}]}`)
	cl, err := Classify(200, body)
	require.Nil(t, err)
	assert.True(t, cl.NotFound())
}

func TestNotFoundIsCaseInsensitive(t *testing.T) {
	body := []byte(`{"response": [{"success": false, "error": {"message": "Not Found"}}]}`)
	cl, err := Classify(200, body)
	require.Nil(t, err)
	assert.True(t, cl.NotFound())
}

func TestNotFoundFalseOnOtherErrors(t *testing.T) {
	body := []byte(`{"response": [{"success": false, "error": {"message": "rate limited"}}]}`)
	cl, err := Classify(200, body)
	require.Nil(t, err)
	assert.False(t, cl.NotFound())
}

func TestWarningMessage(t *testing.T) {
	body := []byte(`{"response": [{"success": true, "warning": {"message": "Anomaly detected"}}]}`)
	cl, err := Classify(200, body)
	require.Nil(t, err)
	assert.Equal(t, "Anomaly detected", cl.WarningMessage(0))
	assert.Equal(t, "", cl.WarningMessage(1))
}

func TestSuccessOutOfRange(t *testing.T) {
	cl, err := Classify(200, []byte(`{"response": []}`))
	require.Nil(t, err)
	assert.False(t, cl.Success(0))
}
