package chain

import "fmt"

// Chain construction errors are programming errors: they panic at setup time
// rather than surfacing while serving requests.
func panicf(msgfmt string, args ...any) {
	panic(fmt.Errorf(msgfmt, args...))
}
