// SPDX-License-Identifier: MIT
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	applog "wakeup/internal/log"
	"wakeup/internal/transport"
)

const (
	publishTimeout  = 2 * time.Second
	disconnectQuiet = 250 // milliseconds
)

var errPublishTimeout = errors.New("timed out")

// Config holds MQTT client configuration.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // Base topic; events go to <Topic>/<kind>.
}

// Transport publishes listener events as JSON to an MQTT broker so home
// automation can follow the listener.
type Transport struct {
	client paho.Client
	topic  string

	mu     sync.Mutex
	closed bool
}

// NewTransport connects to the broker and returns a ready transport.
func NewTransport(cfg Config) (*Transport, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetOnConnectHandler(connectHandler)
	opts.SetConnectionLostHandler(connectLostHandler)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	applog.Infof("MQTTTransport: Connected to broker %s", cfg.Broker)
	return newTransport(client, cfg.Topic), nil
}

func newTransport(client paho.Client, topic string) *Transport {
	return &Transport{client: client, topic: topic}
}

// Topic returns the topic an event of the given kind is published to.
func (t *Transport) Topic(kind transport.EventKind) string {
	return t.topic + "/" + string(kind)
}

// Send publishes the event with QoS 0, waiting at most publishTimeout.
func (t *Transport) Send(event transport.Event) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return transport.ErrClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	token := t.client.Publish(t.Topic(event.Kind), 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: %w", event.Kind, errPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Kind, err)
	}
	return nil
}

// Close disconnects from the broker.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.client.Disconnect(disconnectQuiet)
	applog.Infof("MQTTTransport: Disconnected")
	return nil
}

var connectHandler paho.OnConnectHandler = func(client paho.Client) {
	applog.Infof("MQTTTransport: Connection established")
}

var connectLostHandler paho.ConnectionLostHandler = func(client paho.Client, err error) {
	applog.Warnf("MQTTTransport: Connection lost: %v", err)
}

var _ transport.Transport = (*Transport)(nil)
