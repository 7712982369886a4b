package session

// Command actions understood by the client's video element
const (
	ActionPlay              = "play"
	ActionPause             = "pause"
	ActionSeek              = "seek"
	ActionSetVolume         = "set_volume"
	ActionSetRate           = "set_rate"
	ActionDetach            = "detach"
	ActionRequestFullscreen = "request_fullscreen"
	ActionExitFullscreen    = "exit_fullscreen"
)

// MediaCommand is the payload of a command message
type MediaCommand struct {
	Action string   `json:"action"`
	Value  *float64 `json:"value,omitempty"`
}

// remoteMedia drives the client's video element by pushing commands. The
// element reports back through the media callback endpoint.
type remoteMedia struct {
	hub *Hub
}

func (m remoteMedia) Play() error                { return m.push(ActionPlay, nil) }
func (m remoteMedia) Pause() error               { return m.push(ActionPause, nil) }
func (m remoteMedia) Seek(seconds float64) error { return m.push(ActionSeek, &seconds) }
func (m remoteMedia) SetVolume(v float64) error  { return m.push(ActionSetVolume, &v) }
func (m remoteMedia) SetRate(r float64) error    { return m.push(ActionSetRate, &r) }
func (m remoteMedia) Detach() error              { return m.push(ActionDetach, nil) }

func (m remoteMedia) push(action string, value *float64) error {
	m.hub.Publish(Message{Type: TypeCommand, Data: MediaCommand{Action: action, Value: value}})
	return nil
}

// remoteScreen asks the client to enter or leave fullscreen. The outcome
// arrives later as a fullscreen callback, so requests never fail here.
type remoteScreen struct {
	hub *Hub
}

func (s remoteScreen) RequestFullscreen() error {
	s.hub.Publish(Message{Type: TypeCommand, Data: MediaCommand{Action: ActionRequestFullscreen}})
	return nil
}

func (s remoteScreen) ExitFullscreen() error {
	s.hub.Publish(Message{Type: TypeCommand, Data: MediaCommand{Action: ActionExitFullscreen}})
	return nil
}
