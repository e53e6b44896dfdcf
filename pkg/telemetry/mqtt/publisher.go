package mqtt

import (
	"context"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/uvk5.go/pkg/clone"
	"github.com/robotalks/uvk5.go/pkg/telemetry/msgs"
)

// Topic kinds under radio/<id>/.
const (
	TopicState    = "state"
	TopicProgress = "progress"
	TopicResult   = "result"
)

// PublishTimeout bounds how long a publish may block the engine.
const PublishTimeout = time.Second

// RadioTopic returns the topic of kind for a radio.
func RadioTopic(radioID, kind string) string {
	return "radio/" + radioID + "/" + kind
}

// ParseRadioTopic splits a radio/<id>/<kind> topic.
func ParseRadioTopic(topic string) (radioID, kind string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[0] != "radio" || items[1] == "" {
		return "", "", false
	}
	return items[1], items[2], true
}

// SetWill makes the broker publish an idle state for radioID when the
// publisher disappears without closing.
func SetWill(opts *paho.ClientOptions, topicPrefix, radioID string) error {
	payload, err := msgs.Encode(msgs.NewSessionState(radioID, clone.Idle))
	if err != nil {
		return err
	}
	opts.SetBinaryWill(topicPrefix+RadioTopic(radioID, TopicState), payload, 1, true)
	return nil
}

// Publisher sends the events of one engine. It implements
// clone.StateNotifier and can be passed to clone.WithProgress.
type Publisher struct {
	Queue   *Queue
	RadioID string

	lock     sync.Mutex
	state    clone.State
	firmware string
	port     string
}

// NewPublisher creates a Publisher.
func NewPublisher(q *Queue, radioID string) *Publisher {
	return &Publisher{Queue: q, RadioID: radioID}
}

// SetSession records the port and firmware reported with each state and
// republishes the current state.
func (p *Publisher) SetSession(port, firmware string) {
	p.lock.Lock()
	p.port, p.firmware = port, firmware
	state := p.state
	p.lock.Unlock()
	p.publishState(state)
}

// StateChanged implements clone.StateNotifier.
func (p *Publisher) StateChanged(ctx context.Context, state clone.State) {
	p.lock.Lock()
	p.state = state
	p.lock.Unlock()
	p.publishState(state)
}

func (p *Publisher) publishState(state clone.State) {
	ev := msgs.NewSessionState(p.RadioID, state)
	p.lock.Lock()
	ev.Firmware, ev.Port = p.firmware, p.port
	p.lock.Unlock()
	p.publish(TopicState, ev, 1, true)
}

// Progress publishes a transferred block.
func (p *Publisher) Progress(progress clone.Progress) {
	p.publish(TopicProgress, msgs.NewSyncProgress(progress), 0, false)
}

// Result publishes the outcome of a transfer.
func (p *Publisher) Result(op clone.Op, report *clone.Report, err error) {
	p.publish(TopicResult, msgs.NewTransferResult(op, report, err), 1, false)
}

func (p *Publisher) publish(kind string, ev msgs.Event, qos byte, retain bool) {
	payload, err := msgs.Encode(ev)
	if err != nil {
		glog.Errorf("encode %s event: %v", kind, err)
		return
	}
	token := p.Queue.PubWith(RadioTopic(p.RadioID, kind), payload, qos, retain)
	if qos > 0 && !token.WaitTimeout(PublishTimeout) {
		glog.Warningf("publish %s event timed out", kind)
		return
	}
	if err := token.Error(); err != nil {
		glog.Warningf("publish %s event: %v", kind, err)
	}
}

// EventHandler receives decoded events.
type EventHandler func(radioID string, ev msgs.Event)

// SubscribeEvents subscribes to the events of every radio, or of one when
// radioID isn't empty.
func SubscribeEvents(q *Queue, radioID string, handler EventHandler) *Subscription {
	if radioID == "" {
		radioID = "+"
	}
	return q.Sub(RadioTopic(radioID, "+"), func(topic string, payload []byte) {
		id, _, ok := ParseRadioTopic(topic)
		if !ok {
			return
		}
		ev, err := msgs.Decode(payload)
		if err != nil {
			glog.Warningf("%s: %v", topic, err)
			return
		}
		handler(id, ev)
	})
}
