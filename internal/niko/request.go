package niko

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Request publishes a command frame and waits for the matching response.
//
// The hobby API has no correlation IDs; each service answers commands on
// its rsp topic in order. Request therefore queues a waiter on the
// response topic before publishing, and the demux hands responses to
// waiters FIFO. Concurrent requests against the same service are safe as
// long as the controller preserves ordering, which it does.
//
// Parameters:
//   - ctx: Cancels the wait early
//   - cmdTopic: Topic to publish the command on
//   - rspTopic: Topic the response arrives on
//   - req: Command frame
//
// Returns:
//   - *Frame: Response frame (never an error frame)
//   - error: ErrRequestTimeout, ErrClosed, *APIError for controller
//     rejections, or a transport error
func (g *Gateway) Request(ctx context.Context, cmdTopic, rspTopic string, req *Frame) (*Frame, error) {
	if g.isClosed() {
		return nil, ErrClosed
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", req.Method, err)
	}

	// Register the waiter before publishing so a fast response cannot
	// race past us into the event path.
	ch := make(chan *Frame, 1)
	g.pendingMu.Lock()
	g.pending[rspTopic] = append(g.pending[rspTopic], ch)
	g.pendingMu.Unlock()

	if err := g.conn.Publish(cmdTopic, qosAtLeastOnce, false, payload); err != nil {
		g.removeWaiter(rspTopic, ch)
		return nil, fmt.Errorf("publishing %s: %w", req.Method, err)
	}

	timer := time.NewTimer(g.requestTimeout)
	defer timer.Stop()

	select {
	case rsp, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if rsp.IsError() {
			return nil, &APIError{Code: rsp.ErrCode, Message: rsp.ErrMessage}
		}
		return rsp, nil
	case <-timer.C:
		g.removeWaiter(rspTopic, ch)
		return nil, fmt.Errorf("%w: %s after %v", ErrRequestTimeout, req.Method, g.requestTimeout)
	case <-ctx.Done():
		g.removeWaiter(rspTopic, ch)
		return nil, fmt.Errorf("%s: %w", req.Method, ctx.Err())
	}
}

// removeWaiter drops a waiter from the pending queue if it is still
// there. A response delivered between the select firing and this call is
// discarded with the channel.
func (g *Gateway) removeWaiter(rspTopic string, ch chan *Frame) {
	g.pendingMu.Lock()
	defer g.pendingMu.Unlock()

	waiters := g.pending[rspTopic]
	for i, w := range waiters {
		if w == ch {
			g.pending[rspTopic] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(g.pending[rspTopic]) == 0 {
		delete(g.pending, rspTopic)
	}
}
