package mqtt

import "github.com/rs/zerolog/log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool

	// expendable messages are evicted first when the outbox is full:
	// settings changes are superseded by later ones and heartbeats carry
	// nothing a reconnect will not report again.
	expendable bool
}

// outbox holds messages published while the broker is unreachable, in
// publish order. When full it evicts the oldest expendable message, or the
// oldest message if every queued one matters, so alarm triggers and
// cancellations survive a long outage of settings churn.
// Not safe for concurrent use; the caller must synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if len(o.msgs) < o.capacity {
		o.msgs = append(o.msgs, msg)
		return
	}

	victim := 0
	for i, m := range o.msgs {
		if m.expendable {
			victim = i
			break
		}
	}
	if o.dropped == 0 {
		log.Warn().Str("component", "mqtt").Int("capacity", o.capacity).
			Str("topic", o.msgs[victim].topic).Msg("outbox full, dropping messages")
	}
	o.dropped++
	o.msgs = append(o.msgs[:victim], o.msgs[victim+1:]...)
	o.msgs = append(o.msgs, msg)
}

// drainAll returns the queued messages oldest first and empties the outbox.
func (o *outbox) drainAll() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Warn().Str("component", "mqtt").Int("dropped", o.dropped).Msg("messages lost while disconnected")
	}
	out := o.msgs
	o.msgs = make([]bufferedMsg, 0, o.capacity)
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
