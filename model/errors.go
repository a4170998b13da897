package model

import "fmt"

// ValidationError is returned when an artifact or a label cannot be used
type ValidationError struct {
	Field  string
	Reason string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s: %s", v.Field, v.Reason)
}
