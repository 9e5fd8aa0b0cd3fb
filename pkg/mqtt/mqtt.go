// Package mqtt publishes the decoded time to an mqtt broker.
package mqtt

import (
	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

// quiesce is the specified number of milliseconds to wait for existing
// work to be completed on disconnect.
const quiesce = 250

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service the mqtt messages;
	// sending a message to channel C will publish it.
	C chan Message
}

// Message contains the properties of one mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generates a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C: make(chan Message),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt messages are sent.
func (m *Handler) Connect(broker string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().AddBroker(broker)
	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect ends the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Service listens on channel C and publishes each message. With no broker
// or an empty topic the message is ignored.
func (m *Handler) Service() {
	for msg := range m.C {
		if m.handler == nil || msg.Topic == "" {
			continue
		}

		go m.publish(msg)
	}
}

// publish sends one message, reconnecting first if the broker connection
// was lost. Publishing is asynchronous; the error is only logged.
func (m *Handler) publish(msg Message) {
	if !m.handler.IsConnected() {
		debug.DebugLog.Print("mqtt broker isn't connected, reconnect it")

		if err := m.ReConnect(); err != nil {
			debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
			return
		}
	}

	debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
	t := m.handler.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

	go func() {
		<-t.Done()
		if err := t.Error(); err != nil {
			debug.ErrorLog.Printf("publishing topic %v: %v", msg.Topic, err)
		}
	}()
}
