package emit

import (
	"errors"
	"fmt"
)

var errNilProgram = errors.New("emit: nil program")

// PortError reports a listen port outside 1-65535.
type PortError struct {
	Port int
}

func (e *PortError) Error() string {
	return fmt.Sprintf("emit: port %d out of range", e.Port)
}
