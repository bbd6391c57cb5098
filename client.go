// Package funnelwire is a client for the Funnelwire marketing-analytics
// API. It shapes loosely-structured user, device, and event records into
// the service's batched action protocol, validates identities before
// transmission, and interprets the heterogeneous response envelopes,
// including asynchronous export jobs.
package funnelwire

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/funnelwire/funnelwire-go/export"
	"github.com/funnelwire/funnelwire-go/record"
	"github.com/funnelwire/funnelwire-go/response"
	"github.com/funnelwire/funnelwire-go/wire"
)

// Client is the API facade. It keeps no per-call state, so one Client is
// safe for concurrent use.
type Client struct {
	cfg       Config
	transport Transport
	clock     Clock
	log       *slog.Logger
}

type Option func(*Client)

func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

func WithClock(clk Clock) Option {
	return func(c *Client) { c.clock = clk }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AppID == "" || cfg.ClientKey == "" {
		return nil, errors.New("missing required config options app id and client key")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	c := &Client{
		cfg:   cfg,
		clock: systemClock{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg.Endpoint)
	}
	return c, nil
}

// TrackOptions alter per-action wire fields uniformly across a batch.
type TrackOptions struct {
	AllowOffline           bool
	ForceAnomalousOverride bool
}

// Multi combines attribute records and event records for one request.
// Attributes are ordered before events so they apply at or before the
// events' logical time.
type Multi struct {
	UserAttributes []*record.Fields
	Events         []*record.Fields
}

// SetUserAttributes validates and submits user attribute records. The
// returned slice holds the service's per-action results; a false success
// flag in one of them is data for the caller, not an error.
func (c *Client) SetUserAttributes(ctx context.Context, records []*record.Fields) ([]map[string]any, error) {
	if err := c.requireMode(true, wire.ActionSetUserAttributes); err != nil {
		return nil, err
	}
	if err := record.Validate(records); err != nil {
		countError(err)
		return nil, err
	}

	actions := make([]wire.Action, 0, len(records))
	for _, r := range records {
		a, err := wire.MapUserAttributes(r)
		if err != nil {
			countError(err)
			return nil, err
		}
		actions = append(actions, a)
	}
	return c.postActions(ctx, actions, wire.BatchOptions{ActionsPerRequest: c.cfg.ActionsPerRequest})
}

// SetDeviceAttributes validates and submits device attribute records.
func (c *Client) SetDeviceAttributes(ctx context.Context, records []*record.Fields) ([]map[string]any, error) {
	if err := c.requireMode(true, wire.ActionSetDeviceAttributes); err != nil {
		return nil, err
	}
	if err := record.Validate(records); err != nil {
		countError(err)
		return nil, err
	}

	actions := make([]wire.Action, 0, len(records))
	for _, r := range records {
		a, err := wire.MapDeviceAttributes(r)
		if err != nil {
			countError(err)
			return nil, err
		}
		actions = append(actions, a)
	}
	return c.postActions(ctx, actions, wire.BatchOptions{ActionsPerRequest: c.cfg.ActionsPerRequest})
}

// TrackEvents validates and submits event records. Records without a time
// field are stamped with the clock's current time.
func (c *Client) TrackEvents(ctx context.Context, events []*record.Fields, opts TrackOptions) ([]map[string]any, error) {
	if err := c.requireMode(true, wire.ActionTrack); err != nil {
		return nil, err
	}
	if err := record.Validate(events); err != nil {
		countError(err)
		return nil, err
	}

	now := c.clock.Now()
	actions := make([]wire.Action, 0, len(events))
	for _, e := range events {
		a, err := wire.MapEvent(e, now)
		if err != nil {
			countError(err)
			return nil, err
		}
		actions = append(actions, a)
	}
	return c.postActions(ctx, actions, c.batchOptions(opts))
}

// TrackMulti submits attribute and event records as one mixed batch,
// attributes first, caller order preserved within each group.
func (c *Client) TrackMulti(ctx context.Context, m Multi, opts TrackOptions) ([]map[string]any, error) {
	if err := c.requireMode(true, wire.ActionTrack); err != nil {
		return nil, err
	}

	all := make([]*record.Fields, 0, len(m.UserAttributes)+len(m.Events))
	all = append(all, m.UserAttributes...)
	all = append(all, m.Events...)
	if err := record.Validate(all); err != nil {
		countError(err)
		return nil, err
	}

	actions := make([]wire.Action, 0, len(all))
	for _, r := range m.UserAttributes {
		a, err := wire.MapUserAttributes(r)
		if err != nil {
			countError(err)
			return nil, err
		}
		actions = append(actions, a)
	}
	now := c.clock.Now()
	for _, e := range m.Events {
		a, err := wire.MapEvent(e, now)
		if err != nil {
			countError(err)
			return nil, err
		}
		actions = append(actions, a)
	}
	return c.postActions(ctx, actions, c.batchOptions(opts))
}

// ResetAnomalousUsers clears the anomalous flag on the given users via the
// resetAnomalies variant of setUserAttributes.
func (c *Client) ResetAnomalousUsers(ctx context.Context, userIDs ...any) ([]map[string]any, error) {
	if err := c.requireMode(true, wire.ActionSetUserAttributes); err != nil {
		return nil, err
	}

	actions := make([]wire.Action, 0, len(userIDs))
	for _, id := range userIDs {
		v, err := record.ValueOf(id)
		if err != nil {
			return nil, errors.Wrap(err, "user id")
		}
		actions = append(actions, wire.ResetAnomalies(v))
	}
	return c.postActions(ctx, actions, wire.BatchOptions{ActionsPerRequest: c.cfg.ActionsPerRequest})
}

// UserAttributes reads back a user's stored attributes.
func (c *Client) UserAttributes(ctx context.Context, userID any) (map[string]any, error) {
	cl, err := c.exportUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	attrs, ok := cl.Payload("userAttributes")
	if !ok {
		return map[string]any{}, nil
	}
	m, ok := attrs.(map[string]any)
	if !ok {
		return nil, c.badPayload(cl, "userAttributes")
	}
	return m, nil
}

// UserEvents reads back a user's historical events as per-event aggregates
// with epoch-second first/last times.
func (c *Client) UserEvents(ctx context.Context, userID any) (map[string]wire.EventAggregate, error) {
	cl, err := c.exportUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	raw, ok := cl.Payload("events")
	if !ok {
		return map[string]wire.EventAggregate{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, c.badPayload(cl, "events")
	}

	out := make(map[string]wire.EventAggregate, len(m))
	for name, v := range m {
		fields, ok := v.(map[string]any)
		if !ok {
			return nil, c.badPayload(cl, "events")
		}
		var agg wire.EventAggregate
		agg.Count, _ = payloadInt(fields["count"])
		agg.FirstTime, _ = payloadInt(fields["firstTime"])
		agg.LastTime, _ = payloadInt(fields["lastTime"])
		out[name] = agg
	}
	return out, nil
}

func (c *Client) exportUser(ctx context.Context, userID any) (*response.Classified, error) {
	v, err := record.ValueOf(userID)
	if err != nil {
		return nil, errors.Wrap(err, "user id")
	}
	cl, err := c.post(ctx, wire.ActionExportUser, &wire.ExportUserAction{
		Action: wire.ActionExportUser,
		UserID: &v,
	})
	if err != nil {
		return nil, err
	}
	if err := c.requireSuccess(cl); err != nil {
		return nil, err
	}
	return cl, nil
}

// ExportData submits an export job for the given date range and returns
// the job id. A zero end time means "through now" on the service side.
func (c *Client) ExportData(ctx context.Context, start, end time.Time) (string, error) {
	if err := c.requireMode(false, wire.ActionGetExportJobID); err != nil {
		return "", err
	}

	a := &wire.ExportJobAction{
		Action:    wire.ActionGetExportJobID,
		StartDate: export.FormatDate(start),
	}
	if !end.IsZero() {
		a.EndDate = export.FormatDate(end)
	}

	cl, err := c.post(ctx, wire.ActionGetExportJobID, a)
	if err != nil {
		return "", err
	}
	if err := c.requireSuccess(cl); err != nil {
		return "", err
	}

	jobID, ok := cl.Results[0]["jobId"].(string)
	if !ok {
		if n, isNum := payloadInt(cl.Results[0]["jobId"]); isNum {
			return strconv.FormatInt(n, 10), nil
		}
		return "", c.badPayload(cl, "jobId")
	}
	return jobID, nil
}

// GetExportResults polls an export job once. The caller owns the poll
// cadence; this never blocks waiting for a terminal state.
func (c *Client) GetExportResults(ctx context.Context, jobID string) (*export.Job, error) {
	if err := c.requireMode(false, wire.ActionGetExportResults); err != nil {
		return nil, err
	}

	cl, err := c.post(ctx, wire.ActionGetExportResults, &wire.ExportResultsAction{
		Action: wire.ActionGetExportResults,
		JobID:  jobID,
	})
	if err != nil {
		return nil, err
	}
	if len(cl.Results) == 0 {
		return nil, c.badPayload(cl, "state")
	}

	job, err := export.JobFromResult(jobID, cl.Results[0])
	if err != nil {
		bad := &BadResponseError{Status: cl.Status, Body: err.Error()}
		countError(bad)
		return nil, bad
	}
	return job, nil
}

// GetAbTests lists the account's ab tests.
func (c *Client) GetAbTests(ctx context.Context) ([]map[string]any, error) {
	if err := c.requireMode(false, wire.ActionGetAbTests); err != nil {
		return nil, err
	}
	cl, err := c.post(ctx, wire.ActionGetAbTests, &wire.AbTestsAction{Action: wire.ActionGetAbTests})
	if err != nil {
		return nil, err
	}
	if err := c.requireSuccess(cl); err != nil {
		return nil, err
	}
	return c.payloadList(cl, "abTests")
}

// GetAbTest reads a single ab test by id.
func (c *Client) GetAbTest(ctx context.Context, id int64) ([]map[string]any, error) {
	if err := c.requireMode(false, wire.ActionGetAbTest); err != nil {
		return nil, err
	}
	cl, err := c.post(ctx, wire.ActionGetAbTest, &wire.AbTestsAction{Action: wire.ActionGetAbTest, ID: id})
	if err != nil {
		return nil, err
	}
	if err := c.requireSuccess(cl); err != nil {
		return nil, err
	}
	return c.payloadList(cl, "abTests")
}

// GetMessages lists the account's messages.
func (c *Client) GetMessages(ctx context.Context) ([]map[string]any, error) {
	if err := c.requireMode(false, wire.ActionGetMessages); err != nil {
		return nil, err
	}
	cl, err := c.post(ctx, wire.ActionGetMessages, &wire.MessagesAction{Action: wire.ActionGetMessages})
	if err != nil {
		return nil, err
	}
	if err := c.requireSuccess(cl); err != nil {
		return nil, err
	}
	return c.payloadList(cl, "messages")
}

// GetMessage reads one message by id. A service response naming the
// message as absent raises ResourceNotFoundError rather than
// BadResponseError so callers can branch on existence.
func (c *Client) GetMessage(ctx context.Context, id int64) (map[string]any, error) {
	if err := c.requireMode(false, wire.ActionGetMessage); err != nil {
		return nil, err
	}
	cl, err := c.post(ctx, wire.ActionGetMessage, &wire.MessagesAction{Action: wire.ActionGetMessage, MessageID: id})
	if err != nil {
		return nil, err
	}
	if cl.NotFound() {
		err := &ResourceNotFoundError{Resource: strconv.FormatInt(id, 10)}
		countError(err)
		return nil, err
	}
	if err := c.requireSuccess(cl); err != nil {
		return nil, err
	}
	if m, ok := cl.Payload("message"); ok {
		msg, ok := m.(map[string]any)
		if !ok {
			return nil, c.badPayload(cl, "message")
		}
		return msg, nil
	}
	return cl.Results[0], nil
}

// GetVars reads a user's variable assignments.
func (c *Client) GetVars(ctx context.Context, userID any) (map[string]any, error) {
	if err := c.requireMode(false, wire.ActionGetVars); err != nil {
		return nil, err
	}
	v, err := record.ValueOf(userID)
	if err != nil {
		return nil, errors.Wrap(err, "user id")
	}
	cl, err := c.post(ctx, wire.ActionGetVars, &wire.VarsAction{Action: wire.ActionGetVars, UserID: &v})
	if err != nil {
		return nil, err
	}
	if err := c.requireSuccess(cl); err != nil {
		return nil, err
	}
	raw, ok := cl.Payload("vars")
	if !ok {
		return map[string]any{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, c.badPayload(cl, "vars")
	}
	return m, nil
}

func (c *Client) batchOptions(opts TrackOptions) wire.BatchOptions {
	return wire.BatchOptions{
		ActionsPerRequest:      c.cfg.ActionsPerRequest,
		AllowOffline:           opts.AllowOffline,
		ForceAnomalousOverride: opts.ForceAnomalousOverride,
	}
}

// requireMode rejects actions attempted under the wrong developer-mode
// setting before anything reaches the transport.
func (c *Client) requireMode(dev bool, action string) error {
	if c.cfg.DeveloperMode != dev {
		err := &ConfigurationError{Action: action, DeveloperMode: c.cfg.DeveloperMode}
		countError(err)
		return err
	}
	return nil
}

// requireSuccess surfaces an explicit service rejection of a read request.
// Reads carry one envelope result; a false success flag there means the
// whole request was refused, not partial per-action failure.
func (c *Client) requireSuccess(cl *response.Classified) error {
	if !cl.Success(0) {
		err := &BadResponseError{Status: cl.Status, Body: cl.ErrorMessage(0)}
		countError(err)
		return err
	}
	return nil
}

// postActions sends the batched pages in order and concatenates the
// per-action results across pages.
func (c *Client) postActions(ctx context.Context, actions []wire.Action, opts wire.BatchOptions) ([]map[string]any, error) {
	for _, a := range actions {
		actionsTotal.WithLabelValues(a.Kind()).Inc()
	}

	var results []map[string]any
	for _, batch := range wire.Build(actions, opts) {
		cl, err := c.post(ctx, "multi", map[string]any{"data": batch})
		if err != nil {
			return nil, err
		}
		results = append(results, cl.Results...)
	}
	return results, nil
}

// post wraps a payload in the common request envelope, ships it, and
// classifies the response. Transport failures propagate unwrapped beyond a
// context message; the core never retries.
func (c *Client) post(ctx context.Context, action string, extra any) (*response.Classified, error) {
	payload := map[string]any{
		"appId":      c.cfg.AppID,
		"clientKey":  c.cfg.ClientKey,
		"apiVersion": c.cfg.APIVersion,
		"devMode":    c.cfg.DeveloperMode,
		"action":     action,
		"time":       c.clock.Now().Unix(),
		"reqId":      uuid.NewString(),
	}
	if extra != nil {
		merged, err := mergePayload(payload, extra)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s payload", action)
		}
		payload = merged
	}

	raw, err := c.transport.Post(ctx, action, payload)
	if err != nil {
		requestsTotal.WithLabelValues(action, "error").Inc()
		countError(err)
		return nil, errors.Wrapf(err, "post %s", action)
	}
	requestsTotal.WithLabelValues(action, strconv.Itoa(raw.Status)).Inc()

	cl, err := response.Classify(raw.Status, raw.Body)
	if err != nil {
		countError(err)
		return nil, err
	}

	for i := range cl.Results {
		if w := cl.WarningMessage(i); w != "" {
			c.log.Warn("service warning", "action", action, "index", i, "message", w)
		}
	}
	c.log.Debug("posted", "action", action, "status", raw.Status, "results", len(cl.Results))
	return cl, nil
}

func (c *Client) badPayload(cl *response.Classified, key string) error {
	err := &BadResponseError{
		Status: cl.Status,
		Body:   fmt.Sprintf("response payload missing or ill-shaped %q", key),
	}
	countError(err)
	return err
}

func (c *Client) payloadList(cl *response.Classified, key string) ([]map[string]any, error) {
	raw, ok := cl.Payload(key)
	if !ok {
		return []map[string]any{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, c.badPayload(cl, key)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, c.badPayload(cl, key)
		}
		out = append(out, m)
	}
	return out, nil
}

// mergePayload overlays extra's JSON fields onto the common envelope. The
// round trip keeps the action structs' own marshaling authoritative.
func mergePayload(common map[string]any, extra any) (map[string]any, error) {
	bs, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(bs, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		common[k] = v
	}
	return common, nil
}

func payloadInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
