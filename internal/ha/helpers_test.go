package ha

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	payload string
	retain  bool
}

// fakeTransport records publishes and subscriptions.
type fakeTransport struct {
	published  []published
	subscribed []string
	publishErr error
}

func (f *fakeTransport) Publish(topic string, payload []byte, retain bool) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{topic: topic, payload: string(payload), retain: retain})
	return nil
}

func (f *fakeTransport) Subscribe(topic string) error {
	f.subscribed = append(f.subscribed, topic)
	return nil
}

func (f *fakeTransport) reset() {
	f.published = nil
	f.subscribed = nil
}

func (f *fakeTransport) topics() []string {
	out := make([]string, 0, len(f.published))
	for _, p := range f.published {
		out = append(out, p.topic)
	}
	return out
}

var errBrokerDown = errors.New("broker down")

const testDevice = `{"ids":["node-01"],"name":"Garage"}`

func newTestNode(t *testing.T, opts ...Option) (*Node, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	return NewNode(tr, []byte(testDevice), opts...), tr
}

func attach(t *testing.T, n *Node, cs ...Component) {
	t.Helper()
	require.NoError(t, n.Add(cs...))
}
