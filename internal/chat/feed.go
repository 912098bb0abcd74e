package chat

import (
	"context"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
)

// MaxReconnects is how many consecutive reconnects Stream attempts after the
// connection drops unexpectedly.
const MaxReconnects = 5

// Backoff returns the delay before reconnect attempt n (0-based): one second
// doubled per attempt, capped at 30 seconds.
func Backoff(n int) time.Duration {
	d := time.Second << n
	if n >= 5 || d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// Stream connects to room and calls fn for every message, error frames
// included, until ctx is cancelled or the server closes the room normally.
// token is consulted on every (re)connect so a refreshed access token is
// picked up. Dropped connections are re-established with Backoff, up to
// MaxReconnects times in a row. Authentication failures end the stream
// immediately.
func (d *Dialer) Stream(
	ctx context.Context,
	room string,
	userID api.ID,
	token func() string,
	fn func(Message),
) error {
	attempts := 0
	for {
		conn, err := d.Dial(ctx, room, userID, token())
		if err == nil {
			attempts = 0
			err = d.pump(ctx, conn, fn)
			_ = conn.Close()
		}

		switch {
		case ctx.Err() != nil:
			return nil
		case err == nil, errors.Is(err, ErrClosed):
			return nil
		case !errors.IsRetryable(err):
			return err
		case attempts >= MaxReconnects:
			d.logger.Error("chat reconnect attempts exhausted", "room", room, "error", err)
			return errors.Wrap(err, "maximum reconnection attempts reached")
		}

		delay := Backoff(attempts)
		attempts++
		d.logger.Info("chat reconnecting", "room", room, "attempt", attempts, "delay", delay.String())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (d *Dialer) pump(ctx context.Context, conn *Conn, fn func(Message)) error {
	for {
		msg, err := conn.Receive(ctx)
		var remote *RemoteError
		switch {
		case errors.As(err, &remote):
			d.logger.Warn("chat error frame", "error", remote.Message)
			fn(msg)
			continue
		case err != nil:
			return err
		}
		fn(msg)
	}
}
