// Package all registers every command set with the shell.
package all

import (
	// command sets
	_ "github.com/robotalks/uvk5.go/pkg/cli/cmds/memory"
	_ "github.com/robotalks/uvk5.go/pkg/cli/cmds/radio"
)
