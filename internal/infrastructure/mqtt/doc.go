// Package mqtt provides the subscribe client for Scanlink Core.
//
// This package manages:
//   - Connection to the MQTT broker using the resolved configuration
//   - A single-topic subscription per Subscriber instance
//   - Ordered, continuous delivery of inbound messages to a callback
//   - A clean start/stop lifecycle
//
// # Architecture
//
// Each Subscriber owns one delivery goroutine (the worker). The paho
// network machinery hands inbound messages to the Subscriber in network
// order; they are queued and delivered to the registered callback
// synchronously on the worker, one at a time, never reordered. The
// callback must not block: it delays every subsequent delivery.
//
// Subscribe is non-blocking. Connection and subscription outcomes surface
// only through the log; a broker that rejects the subscription or drops
// the transport does not crash the process. Failure is terminal for the
// instance: there is no reconnect or backoff, reception simply ends and a
// fresh Subscriber is required. Owners that need liveness detection should
// watch for the absence of deliveries.
//
// # Usage
//
//	sub := mqtt.New(rec.Host, rec.Port, rec.ClientID, func(topic string, payload []byte) {
//	    log.Info("message received", "topic", topic, "bytes", len(payload))
//	})
//	sub.SetLogger(log)
//	if err := sub.Subscribe(rec.Topic); err != nil {
//	    return err
//	}
//	defer sub.Stop()
//
// Stop is idempotent and safe from any goroutine except the callback
// itself (it waits for the worker the callback runs on).
package mqtt
