package record

// Identity key spellings accepted on input. Wire actions always use the
// camelCase form.
var (
	UserKeys   = []string{"user_id", "userId"}
	DeviceKeys = []string{"device_id", "deviceId"}
)

// ValidationError reports a record that cannot name its subject. It is
// raised before any network call is made.
type ValidationError struct {
	Record *Fields
}

func (e *ValidationError) Error() string {
	return "No device_id or user_id in hash: " + e.Record.String()
}

// Identity returns the record's identity value and whether it names a user
// (as opposed to a device). ok is false when neither key is present and
// non-empty.
func Identity(f *Fields) (v Value, user bool, ok bool) {
	for _, k := range UserKeys {
		if v, found := f.Get(k); found && !v.Empty() {
			return v, true, true
		}
	}
	for _, k := range DeviceKeys {
		if v, found := f.Get(k); found && !v.Empty() {
			return v, false, true
		}
	}
	return Value{}, false, false
}

// Validate checks every record in the batch for an identity key. The whole
// batch is rejected on the first offender; nothing is partially submitted.
func Validate(records []*Fields) error {
	for _, r := range records {
		if _, _, ok := Identity(r); !ok {
			return &ValidationError{Record: r}
		}
	}
	return nil
}
