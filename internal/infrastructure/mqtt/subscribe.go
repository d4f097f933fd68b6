package mqtt

import (
	"fmt"
)

// Subscribe registers a handler for messages on the specified topic.
//
// The subscription is tracked internally and automatically restored if
// the connection drops and reconnects. Subscribing to a topic that
// already has a subscription replaces the existing handler.
//
// Parameters:
//   - topic: Topic filter to subscribe to (wildcards are not used by the
//     hobby API; its topics are fixed)
//   - qos: Quality of service level (0, 1, or 2)
//   - handler: Callback invoked for each received message
//
// Returns:
//   - error: ErrNotConnected or ErrSubscribeFailed (wrapped)
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}

	if qos > maxQoS {
		return fmt.Errorf("%w: invalid QoS %d (must be 0-2)", ErrSubscribeFailed, qos)
	}

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))

	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	return nil
}

// Unsubscribe removes the subscription for the specified topic.
//
// The topic is also removed from the reconnect restore set, so it will
// not be re-subscribed after a connection drop.
//
// Parameters:
//   - topic: Topic filter to unsubscribe from
//
// Returns:
//   - error: ErrNotConnected or ErrUnsubscribeFailed (wrapped)
func (c *Client) Unsubscribe(topic string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Unsubscribe(topic)

	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	return nil
}
