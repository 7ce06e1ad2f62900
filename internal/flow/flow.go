// Package flow defines the messages exchanged with the host event flow: the
// inbound Message that triggers a node and the Output a node emits.
package flow

import "sync"

// Message is an inbound event. Each field is only consulted when the node's
// own configuration leaves the corresponding value empty.
type Message struct {
	LocalFilename       string `json:"localfilename,omitempty"`
	DestinationFilename string `json:"destinationfilename,omitempty"`
}

// Output is the result event a node forwards downstream.
type Output struct {
	Payload bool `json:"payload"`
}

// Emitter receives the outputs of a node.
type Emitter interface {
	Send(out Output)
}

// EmitterFunc adapts a function to an Emitter.
type EmitterFunc func(out Output)

func (f EmitterFunc) Send(out Output) { f(out) }

// Recorder is a concurrency-safe Emitter that keeps everything it is sent.
type Recorder struct {
	mu      sync.Mutex
	outputs []Output
}

func (r *Recorder) Send(out Output) {
	r.mu.Lock()
	r.outputs = append(r.outputs, out)
	r.mu.Unlock()
}

// Outputs returns a copy of the recorded outputs in send order.
func (r *Recorder) Outputs() []Output {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Output(nil), r.outputs...)
}

// Last returns the most recent output, if any.
func (r *Recorder) Last() (Output, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outputs) == 0 {
		return Output{}, false
	}
	return r.outputs[len(r.outputs)-1], true
}
