package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for the broker to
	// accept the connection before the connect attempt errors out.
	defaultConnectTimeout = 10 * time.Second

	// defaultKeepAlive is the keepalive interval for the connection. With
	// CleanSession disabled the broker retains subscription state across a
	// disconnect; the intended retention window is sessionRetention.
	defaultKeepAlive = 60 * time.Second

	// sessionRetention is the intended broker-side session lifetime for a
	// disconnected client. MQTT 3.1.1 has no session-expiry property on
	// the wire, so the broker's own persistence limit applies.
	sessionRetention = time.Hour

	// maxInboundPayload bounds the size of a message accepted for
	// delivery. Larger payloads are dropped with an error log so a
	// misbehaving broker cannot force unbounded memory growth.
	maxInboundPayload = 1 << 20 // 1 MiB

	// subscribeQoS is the QoS level requested for the subscription.
	subscribeQoS = 1

	// disconnectQuiesce is the time allowed for in-flight work when
	// disconnecting, in milliseconds.
	disconnectQuiesce = 250

	// queueDepth is the capacity of the delivery queue between the
	// network machinery and the worker. A full queue applies backpressure
	// to the transport rather than dropping messages.
	queueDepth = 64
)

// buildClientOptions creates paho MQTT options for a subscriber.
//
// This configures:
//   - Broker URL from the resolved host and port
//   - The client identity as credentials
//   - Persistent session (CleanSession off) with keepalive
//   - Ordered handler dispatch, so deliveries match network order
//   - No auto-reconnect and no connect retry: a transport failure is
//     terminal for the instance
func buildClientOptions(host string, port uint16, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", host, port))
	opts.SetClientID(clientID)

	opts.SetCleanSession(false)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetConnectTimeout(defaultConnectTimeout)

	// Ordered dispatch is what allows the worker to guarantee in-order
	// delivery to the callback.
	opts.SetOrderMatters(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	return opts
}
