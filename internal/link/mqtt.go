package link

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopicPrefix is the topic namespace for link frames. Each half
// subscribes to its own inbox under the prefix and publishes to the
// peer's.
const DefaultTopicPrefix = "splitkbd/link"

// MQTTTransport carries link frames over an MQTT broker at QoS 0,
// matching the protocol's at-most-once contract.
type MQTTTransport struct {
	client  paho.Client
	rxTopic string
	txTopic string

	mu sync.Mutex
	fn func([]byte)
}

// NewMQTTTransport connects to the broker and subscribes to this half's
// inbox topic.
func NewMQTTTransport(broker, prefix string, role Role) (*MQTTTransport, error) {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	t := &MQTTTransport{
		rxTopic: prefix + "/" + role.String(),
		txTopic: prefix + "/" + role.Peer().String(),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("splitkbd-" + role.String()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			// Runs on the initial connect and on every reconnect, so
			// the inbox subscription survives broker restarts.
			token := c.Subscribe(t.rxTopic, 0, t.onMessage)
			if token.WaitTimeout(5*time.Second) && token.Error() != nil {
				log.Printf("link: subscribe %s: %v", t.rxTopic, token.Error())
			}
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	t.client = client
	return t, nil
}

// Send publishes the frame to the peer inbox.
// QoS 0 (at-most-once), not retained. The payload is detached from the
// caller's buffer because the client holds it asynchronously.
func (t *MQTTTransport) Send(data []byte) error {
	frame := make([]byte, len(data))
	copy(frame, data)

	token := t.client.Publish(t.txTopic, 0, false, frame)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// SetReceiver installs the frame callback.
func (t *MQTTTransport) SetReceiver(fn func([]byte)) {
	t.mu.Lock()
	t.fn = fn
	t.mu.Unlock()
}

func (t *MQTTTransport) onMessage(_ paho.Client, msg paho.Message) {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn != nil {
		fn(msg.Payload())
	}
}

// Connected reports whether the broker session is up.
func (t *MQTTTransport) Connected() bool {
	return t.client.IsConnected()
}

// Close disconnects from the broker.
func (t *MQTTTransport) Close() error {
	t.client.Disconnect(1000) // 1 second timeout
	return nil
}
