//go:build !unix

package proc

import "os/exec"

// killGroup is a no-op; WaitDelay still bounds the call.
func killGroup(*exec.Cmd) {}
