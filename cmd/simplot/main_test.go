package main

import (
	"bytes"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_main_bareInvocation re-executes the test binary with no
// arguments so main's os.Exit path can be observed: the usage text
// must land on stdout and the process must exit nonzero.
func Test_main_bareInvocation(t *testing.T) {
	if os.Getenv("SIMPLOT_BARE_MAIN") == "1" {
		os.Args = os.Args[:1]
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=Test_main_bareInvocation")
	cmd.Env = append(os.Environ(), "SIMPLOT_BARE_MAIN=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "a bare invocation must exit nonzero")
	assert.Equal(t, 1, exitErr.ExitCode())

	assert.Contains(t, stdout.String(), "usage:", "usage goes to stdout")
	assert.Contains(t, stdout.String(), "zipf-batch", "usage lists the commands")
	assert.Empty(t, stderr.String())
}
