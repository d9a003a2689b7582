package breaker

const (
	pathPause   = "breaker/pause"
	pathUnpause = "breaker/unpause"
	pathResume  = "breaker/resume"
)

// PauseMsg stops withdrawals until unpaused.
type PauseMsg struct{}

// Path returns the routing path for this message.
func (PauseMsg) Path() string { return pathPause }

// Validate always succeeds, the message carries no data.
func (PauseMsg) Validate() error { return nil }

// UnpauseMsg clears the administrative pause.
type UnpauseMsg struct{}

// Path returns the routing path for this message.
func (UnpauseMsg) Path() string { return pathUnpause }

// Validate always succeeds, the message carries no data.
func (UnpauseMsg) Validate() error { return nil }

// ResumeMsg clears the automatic suspension tripped by a rate limit
// breach.
type ResumeMsg struct{}

// Path returns the routing path for this message.
func (ResumeMsg) Path() string { return pathResume }

// Validate always succeeds, the message carries no data.
func (ResumeMsg) Validate() error { return nil }
