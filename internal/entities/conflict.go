package entities

import (
	"fmt"
)

// Conflict describes two Booked reservations sharing one slot key.
type Conflict struct {
	Key    string `json:"key"`
	First  string `json:"first"`
	Second string `json:"second"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("Conflict on %s: %s and %s", c.Key, c.First, c.Second)
}
