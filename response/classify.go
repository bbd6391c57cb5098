// Package response interprets the remote service's heterogeneous JSON
// envelopes and maps them onto domain error kinds.
package response

import (
	"strings"

	"github.com/valyala/fastjson"
)

// Classified is a well-formed service response: the per-action result list,
// verbatim, so callers can inspect success per action.
type Classified struct {
	Status  int
	Results []map[string]any
}

// Classify checks the HTTP status and unwraps the response envelope. Both
// the action-array shape (writes, track) and the single-envelope read shape
// carry a top-level "response" list; anything else is a protocol error.
func Classify(status int, body []byte) (*Classified, error) {
	if status < 200 || status > 299 {
		return nil, &BadResponseError{Status: status, Body: string(body)}
	}

	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return nil, &BadResponseError{Status: status, Body: string(body)}
	}

	list := v.GetArray("response")
	if list == nil {
		return nil, &BadResponseError{Status: status, Body: string(body)}
	}

	c := &Classified{Status: status, Results: make([]map[string]any, 0, len(list))}
	for _, item := range list {
		m, err := toAny(item)
		if err != nil {
			return nil, &BadResponseError{Status: status, Body: string(body)}
		}
		asMap, ok := m.(map[string]any)
		if !ok {
			return nil, &BadResponseError{Status: status, Body: string(body)}
		}
		c.Results = append(c.Results, asMap)
	}
	return c, nil
}

// Success reports the per-action success flag. Absent flags count as
// failure.
func (c *Classified) Success(i int) bool {
	if i < 0 || i >= len(c.Results) {
		return false
	}
	ok, _ := c.Results[i]["success"].(bool)
	return ok
}

// ErrorMessage returns the service's error message for one action, or ""
// when the action carried none.
func (c *Classified) ErrorMessage(i int) string {
	if i < 0 || i >= len(c.Results) {
		return ""
	}
	e, ok := c.Results[i]["error"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := e["message"].(string)
	return msg
}

// WarningMessage returns the service's warning message for one action, if
// any. Warnings accompany successful actions and are worth logging.
func (c *Classified) WarningMessage(i int) string {
	if i < 0 || i >= len(c.Results) {
		return ""
	}
	w, ok := c.Results[i]["warning"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := w["message"].(string)
	return msg
}

// NotFound reports whether the first result's error message names an absent
// resource.
func (c *Classified) NotFound() bool {
	return strings.Contains(strings.ToLower(c.ErrorMessage(0)), "not found")
}

// Payload extracts a read envelope's payload: single-envelope reads wrap
// their content under one key inside the first (and only) result.
func (c *Classified) Payload(key string) (any, bool) {
	if len(c.Results) == 0 {
		return nil, false
	}
	v, ok := c.Results[0][key]
	return v, ok
}

// toAny flattens a fastjson value into plain Go data. Integral numbers stay
// int64 so ids and epoch timestamps survive the trip.
func toAny(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any)
		var visitErr error
		o.Visit(func(key []byte, item *fastjson.Value) {
			if visitErr != nil {
				return
			}
			child, err := toAny(item)
			if err != nil {
				visitErr = err
				return
			}
			m[string(key)] = child
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return m, nil
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			child, err := toAny(item)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	case fastjson.TypeString:
		sb, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return string(sb), nil
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	default:
		return nil, nil
	}
}
