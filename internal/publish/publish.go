// Package publish bridges consumed samples to an MQTT broker. It is an
// external consumer of the device: it never runs inside the device's
// critical sections, and a broker outage never stalls sampling.
package publish

import (
	"encoding/json"
	"time"

	"codeberg.org/mutker/simtempd/internal/simtemp"
)

// Topic suffixes appended to the configured topic prefix.
const (
	TopicSamples = "samples"
	TopicAlerts  = "alerts"
)

// Publisher publishes device output to a broker.
type Publisher interface {
	// PublishSample sends one consumed sample.
	PublishSample(sample simtemp.Sample) error

	// PublishAlert sends a threshold-crossing sample on the alert topic.
	PublishAlert(sample simtemp.Sample) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the JSON message body for one sample.
type Payload struct {
	Sample SamplePayload `json:"sample"`
}

// SamplePayload carries the sample fields plus the wall-clock publish
// instant; the device timestamp is monotonic and only orders samples.
type SamplePayload struct {
	PublishedAt string  `json:"published_at"`
	TimestampNs int64   `json:"timestamp_ns"`
	TempMilliC  int32   `json:"temp_mc"`
	TempC       float64 `json:"temp_c"`
	Alert       bool    `json:"alert"`
}

// FormatPayload creates the JSON payload for a sample.
func FormatPayload(sample simtemp.Sample, publishedAt time.Time) ([]byte, error) {
	payload := Payload{
		Sample: SamplePayload{
			PublishedAt: publishedAt.UTC().Format(time.RFC3339Nano),
			TimestampNs: sample.Timestamp,
			TempMilliC:  sample.TempMilliC,
			TempC:       float64(sample.TempMilliC) / 1000,
			Alert:       sample.ThresholdCrossed(),
		},
	}

	return json.Marshal(payload)
}

// NoopPublisher discards everything; used when publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSample(simtemp.Sample) error { return nil }
func (NoopPublisher) PublishAlert(simtemp.Sample) error  { return nil }
func (NoopPublisher) Close() error                       { return nil }
