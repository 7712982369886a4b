package player

import "time"

// Command is an effect produced by Apply for the controller to carry out
type Command interface {
	command()
}

type (
	CmdPlay              struct{}
	CmdPause             struct{}
	CmdSeek              struct{ Seconds float64 }
	CmdSetVolume         struct{ Volume float64 }
	CmdSetRate           struct{ Rate float64 }
	CmdRequestFullscreen struct{}
	CmdExitFullscreen    struct{}
	CmdDetach            struct{}
	CmdCancelTimer       struct{}
)

// CmdStartTimer (re)arms the inactivity timer, replacing any pending one
type CmdStartTimer struct {
	Token uint64
	After time.Duration
}

// CmdNotice is a short message for the user, shown as a toast
type CmdNotice struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Error  bool   `json:"error,omitempty"`
}

func (CmdPlay) command()              {}
func (CmdPause) command()             {}
func (CmdSeek) command()              {}
func (CmdSetVolume) command()         {}
func (CmdSetRate) command()           {}
func (CmdRequestFullscreen) command() {}
func (CmdExitFullscreen) command()    {}
func (CmdDetach) command()            {}
func (CmdCancelTimer) command()       {}
func (CmdStartTimer) command()        {}
func (CmdNotice) command()            {}
