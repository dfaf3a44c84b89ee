package publish

import (
	"sync"
	"time"

	"codeberg.org/mutker/simtempd/internal/errors"
	"codeberg.org/mutker/simtempd/internal/logger"
	"codeberg.org/mutker/simtempd/internal/simtemp"
	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	clientID       = "simtempd"
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second

	// Messages buffered while disconnected; oldest are discarded first
	pendingCapacity = 256
)

// MQTTPublisher publishes samples and alerts to an MQTT broker.
// While the broker is unreachable messages queue up in a bounded
// buffer and are replayed in order on reconnection.
type MQTTPublisher struct {
	client      paho.Client
	topicPrefix string

	mu      sync.Mutex
	pending *pendingQueue
}

// NewMQTTPublisher connects to the given broker. The topic prefix is
// joined with "samples" and "alerts" for the two streams.
func NewMQTTPublisher(broker, topicPrefix string) (*MQTTPublisher, error) {
	errFactory := errors.New()

	p := &MQTTPublisher{
		topicPrefix: topicPrefix,
		pending:     newPendingQueue(pendingCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn().Err(err).Msg("MQTT connection lost, buffering messages")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errFactory.WithMessage(errors.ErrTimeout, "MQTT connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	logger.Info().Str("broker", broker).Str("topic_prefix", topicPrefix).Msg("MQTT publisher connected")

	return p, nil
}

// PublishSample sends one consumed sample at QoS 0.
func (p *MQTTPublisher) PublishSample(sample simtemp.Sample) error {
	payload, err := FormatPayload(sample, time.Now())
	if err != nil {
		return errors.New().Wrap(errors.ErrOperationFailed, err)
	}

	return p.publish(p.topicPrefix+"/"+TopicSamples, payload, 0)
}

// PublishAlert sends a threshold-crossing sample at QoS 1; alerts are
// the messages worth a delivery guarantee.
func (p *MQTTPublisher) PublishAlert(sample simtemp.Sample) error {
	payload, err := FormatPayload(sample, time.Now())
	if err != nil {
		return errors.New().Wrap(errors.ErrOperationFailed, err)
	}

	return p.publish(p.topicPrefix+"/"+TopicAlerts, payload, 1)
}

func (p *MQTTPublisher) publish(topic string, payload []byte, qos byte) error {
	errFactory := errors.New()

	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.pending.push(pendingMsg{topic: topic, payload: payload, qos: qos})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errFactory.WithMessage(errors.ErrTimeout, "MQTT publish timeout")
	}
	if err := token.Error(); err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	return nil
}

// onConnect replays messages buffered while disconnected.
func (p *MQTTPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	dropped := p.pending.dropped
	p.pending.dropped = 0
	msgs := p.pending.drainAll()
	p.mu.Unlock()

	if dropped > 0 {
		logger.Warn().Uint64("dropped", dropped).Msg("Pending MQTT buffer overflowed while disconnected")
	}
	if len(msgs) == 0 {
		return
	}

	logger.Info().Int("messages", len(msgs)).Msg("Replaying buffered MQTT messages")

	for _, msg := range msgs {
		token := client.Publish(msg.topic, msg.qos, false, msg.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			logger.Warn().AnErr("error", token.Error()).Str("topic", msg.topic).Msg("Failed to replay buffered message")
		}
	}
}

// Close disconnects from the broker after letting in-flight messages
// settle.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}
