package testutil

import (
	"fmt"
	"testing"
)

// Step is one named stage of a Scenario.
type Step struct {
	Name string
	Run  func(t *testing.T)
}

// Scenario runs steps in order as numbered subtests of name. Once a step
// fails the remaining steps are logged and not run.
func Scenario(t *testing.T, name string, steps ...Step) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		for i, step := range steps {
			if t.Run(fmt.Sprintf("%02d %s", i+1, step.Name), step.Run) {
				continue
			}
			for _, rest := range steps[i+1:] {
				t.Logf("not run: %s", rest.Name)
			}
			return
		}
	})
}
