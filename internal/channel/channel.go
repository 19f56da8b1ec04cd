// Package channel maintains the client's WebSocket connection to the
// backend's progress broadcast endpoint.
//
// One connection carries all event kinds in an envelope frame; only
// agent_progress payloads are routed onward, everything else is ignored
// without error. All inbound frames for a connection are decoded and
// dispatched by a single goroutine, so events are applied in the exact
// order the backend emitted them. On disconnect the channel reconnects
// with exponential backoff and resubscribes.
package channel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/waverider/waverider/internal/clock"
	"github.com/waverider/waverider/internal/constants"
	"github.com/waverider/waverider/internal/domain"
	wrerrors "github.com/waverider/waverider/internal/errors"
)

// ProgressSink consumes decoded progress events. Satisfied by
// registry.Registry.
type ProgressSink interface {
	ApplyProgress(ev domain.ProgressEvent)
}

// ConnectivityFunc is invoked on every connect and disconnect, outside the
// read loop's critical path.
type ConnectivityFunc func(state domain.Connectivity)

// outboundFrame is the shape of every frame the client sends. Subscriptions
// are scoped by project id, matching the backend's ws handler.
type outboundFrame struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
}

// Options tunes reconnect and keepalive behavior. Zero values fall back to
// the package defaults.
type Options struct {
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	PingInterval       time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReconnectBaseDelay <= 0 {
		o.ReconnectBaseDelay = constants.ReconnectBaseDelay
	}
	if o.ReconnectMaxDelay <= 0 {
		o.ReconnectMaxDelay = constants.ReconnectMaxDelay
	}
	if o.PingInterval <= 0 {
		o.PingInterval = constants.PingInterval
	}
	return o
}

// Channel is the progress broadcast connection. Create with New, then call
// Run once; Run blocks until the context is canceled.
type Channel struct {
	url     string
	opts    Options
	sink    ProgressSink
	onState ConnectivityFunc
	clk     clock.Clock
	logger  zerolog.Logger
	dialer  *websocket.Dialer

	// subs is the set of project ids to (re)subscribe to; replayed on
	// every reconnect so a dropped connection does not lose subscriptions.
	subs chan string
}

// New creates a Channel targeting the given WebSocket URL. onState may be
// nil when no connectivity reporting is needed.
func New(url string, opts Options, sink ProgressSink, onState ConnectivityFunc, clk clock.Clock, logger zerolog.Logger) *Channel {
	return &Channel{
		url:     url,
		opts:    opts.withDefaults(),
		sink:    sink,
		onState: onState,
		clk:     clk,
		logger:  logger.With().Str("component", "channel").Logger(),
		dialer:  websocket.DefaultDialer,
		subs:    make(chan string, 16),
	}
}

// Subscribe requests progress events for a project id. Safe to call before
// the channel is connected; the request is sent on the next connection.
func (c *Channel) Subscribe(projectID string) {
	select {
	case c.subs <- projectID:
	default:
		c.logger.Warn().Str("project_id", projectID).Msg("subscription queue full, dropping request")
	}
}

// Run connects and processes frames until ctx is canceled. Disconnects and
// dial failures are retried with capped exponential backoff; the attempt
// counter resets after each successful connection.
func (c *Channel) Run(ctx context.Context) error {
	attempt := 0
	var wanted []string

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			delay := Backoff(c.opts.ReconnectBaseDelay, attempt, c.opts.ReconnectMaxDelay)
			attempt++
			c.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("retry_in", delay).
				Msg("channel dial failed")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		attempt = 0
		c.emitState(domain.Connectivity{Connected: true, Timestamp: c.clk.Now().UTC()})
		c.logger.Info().Str("url", c.url).Msg("channel connected")

		wanted = c.serve(ctx, conn, wanted)

		reason := "connection closed"
		if ctx.Err() != nil {
			reason = "shutting down"
		}
		c.emitState(domain.Connectivity{
			Connected: false,
			Reason:    reason,
			Timestamp: c.clk.Now().UTC(),
		})
	}
}

// serve owns one connection: a writer goroutine sends pings and
// subscriptions, the calling goroutine reads and dispatches frames in
// arrival order. Returns the accumulated subscription set so the next
// connection can replay it.
func (c *Channel) serve(ctx context.Context, conn *websocket.Conn, wanted []string) []string {
	defer conn.Close() //nolint:errcheck // best-effort close on teardown

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeDone := make(chan []string, 1)
	go func() {
		writeDone <- c.writeLoop(connCtx, conn, wanted)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn().Err(err).Msg("channel read failed")
			}
			cancel()
			return <-writeDone
		}
		c.dispatch(payload)
	}
}

// writeLoop replays queued subscriptions and sends keepalive pings until the
// connection context ends. It is the only writer on the connection.
func (c *Channel) writeLoop(ctx context.Context, conn *websocket.Conn, wanted []string) []string {
	for _, id := range wanted {
		if err := c.writeFrame(conn, outboundFrame{Type: "subscribe", ProjectID: id}); err != nil {
			return wanted
		}
	}

	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return wanted
		case id := <-c.subs:
			wanted = append(wanted, id)
			if err := c.writeFrame(conn, outboundFrame{Type: "subscribe", ProjectID: id}); err != nil {
				return wanted
			}
		case <-ticker.C:
			if err := c.writeFrame(conn, outboundFrame{Type: "ping"}); err != nil {
				return wanted
			}
		}
	}
}

func (c *Channel) writeFrame(conn *websocket.Conn, frame outboundFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(constants.WriteTimeout)); err != nil {
		return wrerrors.Wrap(err, "failed to set write deadline")
	}
	if err := conn.WriteJSON(frame); err != nil {
		c.logger.Warn().Err(err).Str("type", frame.Type).Msg("channel write failed")
		return wrerrors.Wrap(err, "failed to write frame")
	}
	return nil
}

// dispatch decodes one inbound frame. Decoding is two-stage: the envelope
// first, then the payload based on its kind. A malformed frame is dropped
// with a log line and never tears down the connection.
func (c *Channel) dispatch(payload []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.logger.Warn().Err(err).Msg("malformed channel frame dropped")
		return
	}

	switch env.Type {
	case constants.EventAgentProgress:
		var ev domain.ProgressEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			c.logger.Warn().Err(err).Msg("malformed progress payload dropped")
			return
		}
		if ev.SessionID == "" {
			c.logger.Warn().Msg("progress event without session id dropped")
			return
		}
		c.sink.ApplyProgress(ev)

	case constants.EventPong, constants.EventSubscribed:
		// Keepalive and subscription acks carry no state.

	default:
		// Forward compatibility: the backend may add kinds this client
		// does not know yet.
		c.logger.Debug().Str("type", string(env.Type)).Msg("ignoring unknown event kind")
	}
}

func (c *Channel) emitState(state domain.Connectivity) {
	if c.onState != nil {
		c.onState(state)
	}
}
