package mqtt

import "github.com/sweeney/alarm-clock/internal/logic"

// Discard is a Publisher for running without a broker. Everything is dropped.
type Discard struct{}

func (Discard) Publish(logic.Event) error       { return nil }
func (Discard) PublishSystem(SystemEvent) error { return nil }
func (Discard) PublishLight([]byte) error       { return nil }
func (Discard) Close() error                    { return nil }
func (Discard) IsConnected() bool               { return false }
