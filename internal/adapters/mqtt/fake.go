package mqtt

import "sync"

// FakePublisher records published messages for tests.
type FakePublisher struct {
	mu       sync.Mutex
	Messages []FakeMessage

	// PublishError, if set, will be returned by Publish
	PublishError error

	// Closed tracks if Close was called
	Closed bool
}

// FakeMessage is one recorded publish.
type FakeMessage struct {
	Topic   string
	Payload []byte
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(topic string, payload []byte) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.mu.Lock()
	f.Messages = append(f.Messages, FakeMessage{Topic: topic, Payload: payload})
	f.mu.Unlock()
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// OnTopic returns the recorded messages for one topic.
func (f *FakePublisher) OnTopic(topic string) []FakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FakeMessage
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}
