//go:build !unix

package runner

import "os/exec"

func configure(cmd *exec.Cmd) {}
