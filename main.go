package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/chore/cmd/cli"
	"github.com/tyemirov/chore/internal/runner"
)

const (
	exitErrorTemplateConstant = "%v\n"
	genericFailureExitCode    = 1
)

// main executes the chore command-line application. Failed runs exit with the
// failing command's status; every other error exits with status 1.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)

	var exitCodeError runner.ExitCodeError
	if errors.As(executionError, &exitCodeError) && exitCodeError.Code > 0 {
		os.Exit(exitCodeError.Code)
	}
	os.Exit(genericFailureExitCode)
}
