package artifacts

import (
	"github.com/apim-extensions/s3artifacts/model"
)

// validateInstruction checks the instruction an artifact is saved with. The wildcard only
// makes sense when reading.
func validateInstruction(instruction string) error {
	switch instruction {
	case "":
		return &model.ValidationError{Field: "instruction", Reason: "must not be empty"}
	case model.InstructionAny:
		return &model.ValidationError{Field: "instruction", Reason: "wildcard cannot be saved"}
	}
	return nil
}
