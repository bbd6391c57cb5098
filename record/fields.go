package record

import (
	"bytes"
	"encoding/json"
)

// Fields is an insertion-ordered mapping of attribute names to values. Order
// matters on the wire for mixed batches, so plain maps won't do.
type Fields struct {
	keys []string
	vals map[string]Value
}

func New() *Fields {
	return &Fields{vals: make(map[string]Value)}
}

// Set stores v under key, keeping first-insertion order on re-set. Returns
// the receiver so fixtures can chain.
func (f *Fields) Set(key string, v Value) *Fields {
	if f.vals == nil {
		f.vals = make(map[string]Value)
	}
	if _, ok := f.vals[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = v
	return f
}

func (f *Fields) Get(key string) (Value, bool) {
	v, ok := f.vals[key]
	return v, ok
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

func (f *Fields) Keys() []string {
	return f.keys
}

func (f *Fields) Clone() *Fields {
	c := New()
	for _, k := range f.keys {
		c.Set(k, f.vals[k])
	}
	return c
}

func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(f.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Fields) String() string {
	bs, err := f.MarshalJSON()
	if err != nil {
		return "<unprintable record>"
	}
	return string(bs)
}
