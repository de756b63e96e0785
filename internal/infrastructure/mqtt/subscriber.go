package mqtt

import (
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MessageCallback is invoked for every delivered message.
//
// It runs synchronously on the subscriber's worker goroutine, one message
// at a time, in the order messages were received from the network. It must
// not block (it delays every subsequent delivery) and must not call Stop
// (Stop waits for the worker the callback runs on). The callback must not
// retain references into the subscriber beyond the duration of the call.
type MessageCallback func(topic string, payload []byte)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// inbound is a received message queued for delivery.
type inbound struct {
	topic   string
	payload []byte
}

// Subscriber connects to one broker, subscribes to one topic, and streams
// inbound messages to a callback from its own worker goroutine.
//
// Lifecycle: New → Subscribe (at most once) → Stop. Stop is reachable from
// any state and idempotent; there is no way back out of it. Reconnecting
// after a stop or a transport failure requires a fresh instance.
type Subscriber struct {
	host     string
	port     uint16
	clientID string
	topic    string

	callback MessageCallback

	// newClient builds the underlying protocol client.
	// Overridden in tests to inject a simulated transport.
	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client

	clientMu sync.Mutex
	client   pahomqtt.Client

	// queue is the delivery inbox between the network machinery and the
	// worker. done doubles as the instance's keep-alive token: the worker
	// runs until it closes even when no message is pending.
	queue chan inbound
	done  chan struct{}
	lost  chan struct{}

	subscribed atomic.Bool
	stopOnce   sync.Once
	lostOnce   sync.Once
	wg         sync.WaitGroup

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates a Subscriber bound to the given broker identity and callback.
//
// Construction is pure allocation: no network activity occurs until
// Subscribe is called.
func New(host string, port uint16, clientID string, callback MessageCallback) *Subscriber {
	return &Subscriber{
		host:      host,
		port:      port,
		clientID:  clientID,
		callback:  callback,
		newClient: pahomqtt.NewClient,
		queue:     make(chan inbound, queueDepth),
		done:      make(chan struct{}),
		lost:      make(chan struct{}),
	}
}

// SetLogger sets a logger for connection and delivery events.
// If not set, the subscriber is silent.
func (s *Subscriber) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

// Subscribe connects to the broker, issues the subscription for topic, and
// starts the worker goroutine. It never blocks on the network: connect and
// subscribe outcomes surface through the log, not as return values.
//
// It may be called at most once per instance. The second and subsequent
// calls return ErrAlreadySubscribed and have no effect on the worker.
func (s *Subscriber) Subscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	select {
	case <-s.done:
		return ErrStopped
	default:
	}

	if !s.subscribed.CompareAndSwap(false, true) {
		return ErrAlreadySubscribed
	}

	s.topic = topic

	opts := buildClientOptions(s.host, s.port, s.clientID)
	opts.SetOnConnectHandler(s.handleConnect)
	opts.SetConnectionLostHandler(s.handleConnectionLost)

	client := s.newClient(opts)
	s.clientMu.Lock()
	s.client = client
	s.clientMu.Unlock()

	// Fire-and-forget connect: the subscription is issued from the
	// on-connect handler once the broker accepts us.
	token := client.Connect()
	go s.watchConnect(token)

	s.wg.Add(1)
	go s.deliverLoop()

	s.logInfo("listening for messages", "topic", topic)

	return nil
}

// Stop requests the worker to stop, disconnects from the broker, and waits
// for the worker to exit. After Stop returns, no further callback
// invocations occur.
//
// Idempotent; safe from any goroutine except the callback itself; safe
// when Subscribe was never called.
func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)

		s.clientMu.Lock()
		client := s.client
		s.clientMu.Unlock()

		if client != nil {
			client.Disconnect(disconnectQuiesce)
		}
	})

	s.wg.Wait()
}

// handleConnect issues the subscribe request once the connection is up.
// The SUBACK outcome is logged either way; a rejected subscription does
// not stop the delivery machinery.
func (s *Subscriber) handleConnect(c pahomqtt.Client) {
	token := c.Subscribe(s.topic, subscribeQoS, s.handleMessage)

	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			s.logError("failed to subscribe to topic", "topic", s.topic, "error", err)
			return
		}
		s.logInfo("subscribed successfully to topic", "topic", s.topic)
	}()
}

// handleConnectionLost ends reception for this instance. There is no
// reconnect: the owner detects persistent failure by the absence of
// deliveries and constructs a new Subscriber if needed.
func (s *Subscriber) handleConnectionLost(_ pahomqtt.Client, err error) {
	s.logError("connection lost, message reception ended", "error", err)
	s.endReception()
}

// watchConnect logs a failed connect attempt. Subscribe has already
// returned by the time the outcome is known.
func (s *Subscriber) watchConnect(token pahomqtt.Token) {
	token.Wait()
	if err := token.Error(); err != nil {
		s.logError("broker connection failed",
			"host", s.host,
			"port", s.port,
			"error", err,
		)
		s.endReception()
	}
}

// handleMessage queues an inbound message for the worker. Called by the
// transport in network order; the queue preserves that order.
func (s *Subscriber) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	payload := msg.Payload()
	if len(payload) > maxInboundPayload {
		s.logError("dropping oversized message",
			"topic", msg.Topic(),
			"bytes", len(payload),
			"limit", maxInboundPayload,
		)
		return
	}

	select {
	case s.queue <- inbound{topic: msg.Topic(), payload: payload}:
	case <-s.done:
	}
}

// deliverLoop is the worker: it delivers queued messages to the callback
// until Stop is called or the transport fails.
func (s *Subscriber) deliverLoop() {
	defer s.wg.Done()

	for {
		// Stop wins over pending messages.
		select {
		case <-s.done:
			return
		default:
		}

		select {
		case <-s.done:
			return
		case m := <-s.queue:
			s.callback(m.topic, m.payload)
		case <-s.lost:
			s.drain()
			return
		}
	}
}

// drain delivers messages the transport handed over before it failed,
// then lets the worker exit.
func (s *Subscriber) drain() {
	for {
		select {
		case <-s.done:
			return
		case m := <-s.queue:
			s.callback(m.topic, m.payload)
		default:
			return
		}
	}
}

func (s *Subscriber) endReception() {
	s.lostOnce.Do(func() {
		close(s.lost)
	})
}

func (s *Subscriber) getLogger() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

func (s *Subscriber) logInfo(msg string, args ...any) {
	if logger := s.getLogger(); logger != nil {
		logger.Info(msg, args...)
	}
}

func (s *Subscriber) logError(msg string, args ...any) {
	if logger := s.getLogger(); logger != nil {
		logger.Error(msg, args...)
	}
}
