package services

import "github.com/yeremiapane/duty-roster/realtime"

// Emitter is the push side of the live channel.
type Emitter interface {
	EmitToUser(userID, event string, data interface{})
	EmitToAll(event string, data interface{})
}

var _ Emitter = (*realtime.Hub)(nil)

type nopEmitter struct{}

func (nopEmitter) EmitToUser(string, string, interface{}) {}
func (nopEmitter) EmitToAll(string, interface{})          {}
