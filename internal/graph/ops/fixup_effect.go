package ops

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// String renders the effect's configuration name.
func (e FixupEffect) String() string {
	switch e {
	case FixupIgnore:
		return "ignore"
	case FixupMove:
		return "move"
	case FixupSquash:
		return "squash"
	default:
		return "unknown"
	}
}

// MarshalYAML renders e as its configuration name.
func (e FixupEffect) MarshalYAML() (any, error) {
	return e.String(), nil
}

// UnmarshalYAML parses one of "ignore", "move", "squash" (case-sensitive,
// matching [FixupEffect.String]) into e.
func (e *FixupEffect) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "ignore", "":
		*e = FixupIgnore
	case "move":
		*e = FixupMove
	case "squash":
		*e = FixupSquash
	default:
		return fmt.Errorf("unknown fixup effect %q: want ignore, move, or squash", s)
	}
	return nil
}
