package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/fleetops/driver-safety/internal/models"
	log "github.com/sirupsen/logrus"
)

const (
	TopicIncidentCreated  = "fleet/incidents/created"
	TopicIncidentResolved = "fleet/incidents/resolved"
)

// Publisher broadcasts incident lifecycle events. Publishing is best-effort:
// failures are logged and never fail the originating request.
type Publisher interface {
	IncidentCreated(incident *models.Incident)
	IncidentResolved(incident *models.Incident)
	Close()
}

// MQTTPublisher publishes incident events to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// IncidentCreated publishes a newly filed incident.
func (p *MQTTPublisher) IncidentCreated(incident *models.Incident) {
	p.publish(TopicIncidentCreated, incident)
}

// IncidentResolved publishes a resolved incident.
func (p *MQTTPublisher) IncidentResolved(incident *models.Incident) {
	p.publish(TopicIncidentResolved, incident)
}

func (p *MQTTPublisher) publish(topic string, incident *models.Incident) {
	payload, err := json.Marshal(incident)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Error("failed to marshal incident event")
		return
	}

	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.WithField("topic", topic).Warn("incident event publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", topic).Error("failed to publish incident event")
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) IncidentCreated(*models.Incident)  {}
func (NopPublisher) IncidentResolved(*models.Incident) {}
func (NopPublisher) Close()                            {}
