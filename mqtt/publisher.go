package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/avdberg/spotwatch-go/config"
	"github.com/avdberg/spotwatch-go/sensor"
	"github.com/avdberg/spotwatch-go/types"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"

	// State payload for a sensor whose statistic has no data.
	payloadNone = "None"
)

type OnConnected func()

// Publisher pushes sensor states to an MQTT broker with Home Assistant
// discovery, so the prices show up as entities without manual YAML.
type Publisher struct {
	client          paho.Client
	logger          *slog.Logger
	baseTopic       string
	discoveryPrefix string

	// OnConnected fires after every (re)connect. Wire it to re-publish
	// discovery and the current states, retained messages alone do not
	// survive a broker restart without persistence.
	OnConnected OnConnected
}

func New(cnfg config.AppConfigMqtt) *Publisher {
	logger := slog.Default().With("module", "mqtt")

	p := &Publisher{
		logger:          logger,
		baseTopic:       cnfg.GetBaseTopic(),
		discoveryPrefix: cnfg.GetDiscoveryPrefix(),
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID(cnfg.GetClientId())
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetWill(p.bridgeAvailabilityTopic(), payloadOffline, 0, true)
	opts.OnConnect = func(client paho.Client) {
		logger.Info("MQTT connected")
		if p.OnConnected != nil {
			p.OnConnected()
		}
	}
	opts.OnConnectionLost = func(client paho.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	paho.CRITICAL = newPahoLogger(logger, slog.LevelError)
	paho.ERROR = newPahoLogger(logger, slog.LevelError)
	paho.WARN = newPahoLogger(logger, slog.LevelWarn)

	p.client = paho.NewClient(opts)
	return p
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return p.publish(p.bridgeAvailabilityTopic(), []byte(payloadOnline), true)
}

func (p *Publisher) Disconnect() {
	p.logger.Info("disconnecting MQTT client")
	if err := p.publish(p.bridgeAvailabilityTopic(), []byte(payloadOffline), true); err != nil {
		p.logger.Warn("could not publish offline state", slog.Any("error", err))
	}
	p.client.Disconnect(250)
}

// PublishDiscovery announces every descriptor to Home Assistant. Safe
// to repeat, discovery messages are retained and idempotent.
func (p *Publisher) PublishDiscovery(descs []sensor.Descriptor) error {
	for _, d := range descs {
		payload, err := json.Marshal(p.discoveryPayload(d))
		if err != nil {
			return fmt.Errorf("marshalling discovery for %s: %w", d.Key, err)
		}
		if err := p.publish(p.discoveryTopic(d.Key), payload, true); err != nil {
			return err
		}
	}
	p.logger.Debug("published discovery", slog.Int("sensors", len(descs)))
	return nil
}

// RemoveDiscovery retracts sensors that were disabled at runtime. An
// empty retained payload makes Home Assistant drop the entity.
func (p *Publisher) RemoveDiscovery(keys []string) error {
	for _, key := range keys {
		if err := p.publish(p.discoveryTopic(key), []byte{}, true); err != nil {
			return err
		}
	}
	return nil
}

// PublishAvailability marks all sensors of one commodity online or
// offline. Offline covers both an empty cache and a stale one.
func (p *Publisher) PublishAvailability(commodity types.Commodity, online bool) error {
	payload := payloadOffline
	if online {
		payload = payloadOnline
	}
	return p.publish(p.availabilityTopic(commodity), []byte(payload), true)
}

// PublishReadings pushes the state of every reading. Values without
// data publish as "None" so Home Assistant shows unknown, not a
// leftover number.
func (p *Publisher) PublishReadings(readings []sensor.Reading) error {
	for _, r := range readings {
		state := payloadNone
		if r.Value != nil {
			state = strconv.FormatFloat(*r.Value, 'f', -1, 64)
		}
		if err := p.publish(p.stateTopic(r.Key), []byte(state), true); err != nil {
			return err
		}

		attrs, err := json.Marshal(readingAttributes{At: r.At})
		if err != nil {
			return fmt.Errorf("marshalling attributes for %s: %w", r.Key, err)
		}
		if err := p.publish(p.attributesTopic(r.Key), attrs, true); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publish(topic string, payload []byte, retained bool) error {
	token := p.client.Publish(topic, 0, retained, payload)
	if ok := token.WaitTimeout(5 * time.Second); !ok {
		return fmt.Errorf("timeout when publishing to %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// readingAttributes is the json_attributes payload, the hour a min/max
// statistic occurs at.
type readingAttributes struct {
	At *time.Time `json:"at,omitempty"`
}

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
}

type discoveryMessage struct {
	Name                string          `json:"name"`
	UniqueId            string          `json:"unique_id"`
	StateTopic          string          `json:"state_topic"`
	JsonAttributesTopic string          `json:"json_attributes_topic"`
	AvailabilityTopic   string          `json:"availability_topic"`
	PayloadAvailable    string          `json:"payload_available"`
	PayloadNotAvailable string          `json:"payload_not_available"`
	Unit                string          `json:"unit_of_measurement,omitempty"`
	DeviceClass         string          `json:"device_class,omitempty"`
	StateClass          string          `json:"state_class,omitempty"`
	DisplayPrecision    int             `json:"suggested_display_precision"`
	Device              discoveryDevice `json:"device"`
}

func (p *Publisher) discoveryPayload(d sensor.Descriptor) discoveryMessage {
	msg := discoveryMessage{
		Name:                d.Name,
		UniqueId:            fmt.Sprintf("%s_%s", p.baseTopic, d.Key),
		StateTopic:          p.stateTopic(d.Key),
		JsonAttributesTopic: p.attributesTopic(d.Key),
		AvailabilityTopic:   p.availabilityTopic(d.Commodity),
		PayloadAvailable:    payloadOnline,
		PayloadNotAvailable: payloadOffline,
		Unit:                d.Unit,
		DeviceClass:         d.DeviceClass,
		DisplayPrecision:    d.Precision,
		Device: discoveryDevice{
			Identifiers:  []string{p.baseTopic},
			Name:         "Spotwatch",
			Manufacturer: "spotwatch-go",
		},
	}
	if d.DeviceClass == "" {
		msg.StateClass = "measurement"
	}
	return msg
}

func (p *Publisher) stateTopic(key string) string {
	return fmt.Sprintf("%s/sensor/%s/state", p.baseTopic, key)
}

func (p *Publisher) attributesTopic(key string) string {
	return fmt.Sprintf("%s/sensor/%s/attributes", p.baseTopic, key)
}

func (p *Publisher) availabilityTopic(commodity types.Commodity) string {
	return fmt.Sprintf("%s/%s/availability", p.baseTopic, commodity)
}

func (p *Publisher) bridgeAvailabilityTopic() string {
	return fmt.Sprintf("%s/bridge/availability", p.baseTopic)
}

func (p *Publisher) discoveryTopic(key string) string {
	return fmt.Sprintf("%s/sensor/%s/%s/config", p.discoveryPrefix, p.baseTopic, key)
}
