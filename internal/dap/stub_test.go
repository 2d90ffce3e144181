package dap

import "testing"

func TestLaunchDisabledByDefault(t *testing.T) {
	var l Launcher
	_, err := l.Launch(LaunchRequest{ScriptPath: "t/app.pl"})
	if err != ErrNotEnabled {
		t.Fatalf("expected ErrNotEnabled, got %v", err)
	}
}

func TestLaunchEnabled(t *testing.T) {
	l := Launcher{Enabled: true}
	res, err := l.Launch(LaunchRequest{ScriptPath: "t/app.pl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id once debugging is enabled")
	}
}
