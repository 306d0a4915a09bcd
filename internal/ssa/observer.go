package ssa

import "encoding/json"

// Event describes one committed reaction event.
type Event struct {
	Seq       uint64  `json:"seq"`
	Time      float64 `json:"time"`
	Channel   int     `json:"channel"`
	ChannelID string  `json:"channel_id"`
	State     State   `json:"state"`
}

// JSON returns the event as JSON bytes
func (ev Event) JSON() ([]byte, error) {
	return json.Marshal(ev)
}

// Observer is called synchronously by the engine after each committed event,
// on the goroutine running the engine. State is a copy the observer may keep.
type Observer interface {
	ObserveEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) ObserveEvent(ev Event) { f(ev) }

// Observers fans one event out to several observers in order.
type Observers []Observer

func (obs Observers) ObserveEvent(ev Event) {
	for _, o := range obs {
		o.ObserveEvent(ev)
	}
}
