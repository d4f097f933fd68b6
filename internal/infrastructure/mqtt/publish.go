package mqtt

import (
	"fmt"
)

// Publish sends a message to the specified topic.
//
// The hobby API expects JSON payloads on its cmd topics; callers are
// responsible for marshalling. Publish blocks until the broker
// acknowledges the message or the publish timeout expires.
//
// Parameters:
//   - topic: Topic to publish to (e.g. "hobby/control/devices/cmd")
//   - qos: Quality of service level (0, 1, or 2)
//   - retained: Whether the broker retains the message for new subscribers
//   - payload: Message payload bytes
//
// Returns:
//   - error: ErrNotConnected, ErrInvalidTopic, or ErrPublishFailed (wrapped)
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	if err := validateTopic(topic); err != nil {
		return err
	}

	if qos > maxQoS {
		return fmt.Errorf("%w: invalid QoS %d (must be 0-2)", ErrPublishFailed, qos)
	}

	token := c.client.Publish(topic, qos, retained, payload)

	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// validateTopic checks that a topic is valid for publishing.
//
// Publish topics must be non-empty and must not contain wildcards.
func validateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}

	for _, ch := range topic {
		if ch == '+' || ch == '#' {
			return fmt.Errorf("%w: wildcards not allowed in publish topic %q", ErrInvalidTopic, topic)
		}
	}

	return nil
}
