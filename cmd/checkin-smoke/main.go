// Package main provides a CI-friendly smoke test for the TCN Invite live
// check-in feed.
//
// It validates:
//   - handshake + subprotocol selection
//   - hello/ack session establishment
//   - with -code: POST /api/checkins fans out checkin.confirmed to the feed
//
// The token must belong to an admin or pcu_host account.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/realtime"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	conn      *websocket.Conn
	sessionID string

	inbox chan realtime.Envelope
	errCh chan error
}

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:8080", "server base URL")
		origin  = flag.String("origin", "", "Origin header to send (defaults to -url)")
		token   = flag.String("token", os.Getenv("TCN_SMOKE_TOKEN"), "access token of an admin or pcu_host")
		code    = flag.String("code", "", "verification URL or token to check in (optional)")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	base, err := parseBaseURL(*baseURL)
	if err != nil {
		fatalf("invalid -url: %v", err)
	}
	if strings.TrimSpace(*token) == "" {
		fatalf("missing -token (or TCN_SMOKE_TOKEN)")
	}
	if *origin == "" {
		*origin = base.Scheme + "://" + base.Host
	}

	root := context.Background()

	c := mustConnect(root, feedURL(base, *token), *origin, *timeout)
	defer closeWS(c.conn)

	if *verbose {
		fmt.Printf("connected: session=%s origin=%q\n", c.sessionID, *origin)
	}

	if *code == "" {
		fmt.Printf("OK: session=%s\n", c.sessionID)
		return
	}

	outcome := mustCheckIn(root, base, *token, *code, *timeout)
	if outcome == "already_confirmed" {
		fmt.Printf("OK: session=%s outcome=%s (no feed event expected)\n", c.sessionID, outcome)
		return
	}

	ev := c.mustReadUntilType(root, realtime.TypeCheckInConfirmed, *timeout)
	var p realtime.CheckInPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		fatalf("unmarshal checkin.confirmed payload: %v", err)
	}
	fmt.Printf("OK: session=%s invitation=%s guest=%q campus=%s\n", c.sessionID, p.InvitationID, p.GuestName, p.CampusID)
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

func feedURL(base *url.URL, token string) string {
	u := *base
	u.Scheme = "ws"
	if base.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = "/ws/checkins"
	u.RawQuery = url.Values{"access_token": {token}}.Encode()
	return u.String()
}

func mustConnect(parent context.Context, wsURL, origin string, stepTimeout time.Duration) *smokeClient {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	h.Set("Origin", origin)

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{realtime.Subprotocol},
		HTTPHeader:   h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			fatalf("connect: %v (status %d)", err, resp.StatusCode)
		}
		fatalf("connect: %v", err)
	}
	if got := conn.Subprotocol(); got != realtime.Subprotocol {
		fatalf("subprotocol mismatch: got=%q want=%q", got, realtime.Subprotocol)
	}

	conn.SetReadLimit(maxReadBytes)

	c := &smokeClient{
		conn:  conn,
		inbox: make(chan realtime.Envelope, 64),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()

	hello := realtime.Envelope{
		V:       realtime.Version,
		Type:    realtime.TypeHello,
		ID:      fmt.Sprintf("smoke-hello-%d", time.Now().UnixNano()),
		TS:      time.Now().UTC(),
		Payload: json.RawMessage(`{}`),
	}
	mustWriteWithTimeout(parent, conn, hello, stepTimeout)

	ack := c.mustReadUntilType(parent, realtime.TypeHelloAck, stepTimeout)

	var p realtime.HelloAckPayload
	if err := json.Unmarshal(ack.Payload, &p); err != nil {
		fatalf("unmarshal hello.ack payload: %v", err)
	}
	if strings.TrimSpace(p.SessionID) == "" {
		fatalf("hello.ack missing session_id")
	}
	c.sessionID = p.SessionID
	return c
}

func (c *smokeClient) startReadLoop() {
	go func() {
		defer close(c.inbox)
		for {
			_, data, err := c.conn.Read(context.Background())
			if err != nil {
				c.errCh <- err
				return
			}
			var env realtime.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				c.errCh <- fmt.Errorf("bad frame: %w", err)
				return
			}
			c.inbox <- env
		}
	}()
}

func mustCheckIn(parent context.Context, base *url.URL, token, code string, stepTimeout time.Duration) string {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"code": code})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String()+"/api/checkins", bytes.NewReader(body))
	if err != nil {
		fatalf("build check-in request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("check-in request: %v", err)
	}
	defer res.Body.Close()

	var out struct {
		Outcome string `json:"outcome"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(res.Body).Decode(&out)
	if res.StatusCode != http.StatusOK {
		fatalf("check-in failed: status=%d code=%q msg=%q", res.StatusCode, out.Error.Code, out.Error.Message)
	}
	return out.Outcome
}

func (c *smokeClient) mustReadUntilType(parent context.Context, wantType string, stepTimeout time.Duration) realtime.Envelope {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for %q: %v", wantType, ctx.Err())
		case err := <-c.errCh:
			fatalf("connection error while waiting for %q: %v", wantType, err)
		case env, ok := <-c.inbox:
			if !ok {
				fatalf("connection closed while waiting for %q", wantType)
			}
			if env.Type == wantType {
				return env
			}
			if env.Type == realtime.TypeError {
				var ep realtime.ErrorPayload
				_ = json.Unmarshal(env.Payload, &ep)
				fatalf("server error: code=%q msg=%q", ep.Code, ep.Message)
			}
		}
	}
}

func mustWriteWithTimeout(parent context.Context, conn *websocket.Conn, env realtime.Envelope, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		fatalf("marshal envelope: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		fatalf("write failed: %v", err)
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
