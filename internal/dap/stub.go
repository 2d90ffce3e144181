// Package dap is the minimal surface the workspace exposes for
// perl.launchDebugger: by default the command reports that debugging is
// not enabled, since a full Debug Adapter Protocol session (breakpoints,
// stack frames, variable scopes, stepping over a live perl -d process)
// is treated as an external collaborator's concern, not this server's.
package dap

import "errors"

// ErrNotEnabled is returned by Launch when the Launcher has not been
// enabled with the --enable-debugger flag.
var ErrNotEnabled = errors.New("perl.launchDebugger: debugging is not enabled for this workspace")

// LaunchRequest describes the target script perl.launchDebugger was
// asked to attach to.
type LaunchRequest struct {
	ScriptPath string
	Args       []string
}

// LaunchResult is returned on the rare path where debugging has been
// enabled and a session handle was obtained.
type LaunchResult struct {
	SessionID string
	Message   string
}

// Launcher gates whether perl.launchDebugger may proceed. Enabled is
// false unless the server is started with --enable-debugger; this keeps the default posture of exposing no DAP transport at
// all.
type Launcher struct {
	Enabled bool
}

// Launch returns ErrNotEnabled unless l.Enabled is true, in which case
// it reports a session was requested (the actual DAP wire protocol and
// perl -d driving live outside this module's scope).
func (l Launcher) Launch(req LaunchRequest) (LaunchResult, error) {
	if !l.Enabled {
		return LaunchResult{}, ErrNotEnabled
	}
	return LaunchResult{
		SessionID: "pending",
		Message:   "debug session requested for " + req.ScriptPath,
	}, nil
}
