// Package eventstreamutils builds an eventstream.Publisher from configuration.
package eventstreamutils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/mentor/pkg/eventstream"
	"github.com/papercomputeco/mentor/pkg/eventstream/kafka"
	"github.com/papercomputeco/mentor/pkg/eventstream/nop"
)

const (
	ProviderNop   = "nop"
	ProviderKafka = "kafka"
)

type NewPublisherOpts struct {
	ProviderType string

	// Brokers is a comma separated broker list.
	Brokers string
	Topic   string
	Logger  *slog.Logger
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case ProviderNop, "":
		return nop.NewPublisher(), nil
	case ProviderKafka:
		var brokers []string
		for _, b := range strings.Split(o.Brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		return kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   o.Topic,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", o.ProviderType)
	}
}
