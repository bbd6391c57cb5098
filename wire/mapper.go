package wire

import (
	"fmt"
	"math"
	"time"

	"github.com/funnelwire/funnelwire-go/record"
)

// ReservedUserFields are stripped from userAttributes; they are carried by
// dedicated wire fields instead. Matching is exact and case-sensitive,
// everything else passes through verbatim.
var ReservedUserFields = map[string]struct{}{
	"user_id": {},
	"userId":  {},
	"devices": {},
	"events":  {},
}

// ReservedEventFields are stripped from a track action's params.
var ReservedEventFields = map[string]struct{}{
	"user_id":   {},
	"userId":    {},
	"device_id": {},
	"deviceId":  {},
	"event":     {},
	"time":      {},
}

var reservedDeviceFields = map[string]struct{}{
	"device_id": {},
	"deviceId":  {},
}

// MapUserAttributes translates one user record into a setUserAttributes
// action. Nested events become epoch-second aggregates, nested devices pass
// through as sub-records, and everything else lands in userAttributes.
func MapUserAttributes(f *record.Fields) (*UserAttributesAction, error) {
	id, user, ok := record.Identity(f)
	if !ok {
		return nil, &record.ValidationError{Record: f}
	}

	a := &UserAttributesAction{Action: ActionSetUserAttributes}
	if user {
		a.UserID = &id
	} else {
		a.DeviceID = &id
	}

	attrs := record.New()
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		if _, reserved := ReservedUserFields[k]; reserved {
			continue
		}
		if _, device := reservedDeviceFields[k]; device {
			continue
		}
		attrs.Set(k, v)
	}
	if attrs.Len() > 0 {
		a.UserAttributes = attrs
	}

	if v, ok := f.Get("events"); ok {
		events, err := mapEventAggregates(v)
		if err != nil {
			return nil, err
		}
		a.Events = events
	}

	if v, ok := f.Get("devices"); ok {
		if v.Kind() != record.KindList {
			return nil, fmt.Errorf("devices must be a list of device records, got %s", v)
		}
		a.Devices = v.AsList()
	}

	return a, nil
}

// MapDeviceAttributes translates one device record into a
// setDeviceAttributes action. Only the identity key is excluded from
// deviceAttributes.
func MapDeviceAttributes(f *record.Fields) (*DeviceAttributesAction, error) {
	id, user, ok := record.Identity(f)
	if !ok {
		return nil, &record.ValidationError{Record: f}
	}

	a := &DeviceAttributesAction{Action: ActionSetDeviceAttributes}
	if user {
		a.UserID = &id
	} else {
		a.DeviceID = &id
	}

	attrs := record.New()
	for _, k := range f.Keys() {
		if k == "user_id" || k == "userId" {
			continue
		}
		if _, reserved := reservedDeviceFields[k]; reserved {
			continue
		}
		v, _ := f.Get(k)
		attrs.Set(k, v)
	}
	if attrs.Len() > 0 {
		a.DeviceAttributes = attrs
	}

	return a, nil
}

// MapEvent translates one event record into a track action. now supplies
// the event time when the record carries none; an empty params set is
// omitted from the payload entirely.
func MapEvent(f *record.Fields, now time.Time) (*TrackAction, error) {
	id, user, ok := record.Identity(f)
	if !ok {
		return nil, &record.ValidationError{Record: f}
	}

	name, ok := f.Get("event")
	if !ok || name.Kind() != record.KindString || name.AsString() == "" {
		return nil, fmt.Errorf("no event name in hash: %s", f)
	}

	a := &TrackAction{Action: ActionTrack, Event: name.AsString()}
	if user {
		a.UserID = &id
	} else {
		a.DeviceID = &id
	}

	a.Time = now.Unix()
	if v, ok := f.Get("time"); ok {
		t, err := epochSeconds(v)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", a.Event, err)
		}
		a.Time = t
	}

	params := record.New()
	for _, k := range f.Keys() {
		if _, reserved := ReservedEventFields[k]; reserved {
			continue
		}
		v, _ := f.Get(k)
		params.Set(k, v)
	}
	if params.Len() > 0 {
		a.Params = params
	}

	return a, nil
}

func mapEventAggregates(v record.Value) (map[string]EventAggregate, error) {
	if v.Kind() != record.KindMapping {
		return nil, fmt.Errorf("events must map event names to aggregates, got %s", v)
	}

	out := make(map[string]EventAggregate, v.AsMapping().Len())
	for _, name := range v.AsMapping().Keys() {
		ev, _ := v.AsMapping().Get(name)
		if ev.Kind() != record.KindMapping {
			return nil, fmt.Errorf("event %q: aggregate must be a mapping, got %s", name, ev)
		}

		var agg EventAggregate
		for _, k := range ev.AsMapping().Keys() {
			fv, _ := ev.AsMapping().Get(k)
			switch k {
			case "count":
				n, err := wholeNumber(fv)
				if err != nil {
					return nil, fmt.Errorf("event %q count: %w", name, err)
				}
				agg.Count = n
			case "firstTime":
				t, err := epochSeconds(fv)
				if err != nil {
					return nil, fmt.Errorf("event %q firstTime: %w", name, err)
				}
				agg.FirstTime = t
			case "lastTime":
				t, err := epochSeconds(fv)
				if err != nil {
					return nil, fmt.Errorf("event %q lastTime: %w", name, err)
				}
				agg.LastTime = t
			default:
				return nil, fmt.Errorf("event %q: unknown aggregate field %q", name, k)
			}
		}
		out[name] = agg
	}
	return out, nil
}

// epochSeconds flattens instants and numeric timestamps into whole epoch
// seconds, flooring fractional input.
func epochSeconds(v record.Value) (int64, error) {
	switch v.Kind() {
	case record.KindInstant, record.KindDate:
		return v.AsTime().Unix(), nil
	case record.KindInt:
		return v.AsInt(), nil
	case record.KindFloat:
		return int64(math.Floor(v.AsFloat())), nil
	default:
		return 0, fmt.Errorf("not a timestamp: %s", v)
	}
}

func wholeNumber(v record.Value) (int64, error) {
	switch v.Kind() {
	case record.KindInt:
		return v.AsInt(), nil
	case record.KindFloat:
		return int64(v.AsFloat()), nil
	default:
		return 0, fmt.Errorf("not a number: %s", v)
	}
}
