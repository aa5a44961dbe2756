// Package taskfile declares task definitions and the registry built from a taskfile.
package taskfile

// TaskDefinition describes a single named task: the tasks it needs first and
// the shell command lines it runs.
type TaskDefinition struct {
	Name                 string
	Dependencies         []string
	Commands             []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// CommandCount reports how many command lines the task declares.
func (definition TaskDefinition) CommandCount() int {
	return len(definition.Commands)
}
