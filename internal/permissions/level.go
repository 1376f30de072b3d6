package permissions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pjecz/casiopea/internal/models"
)

// Level is the ordered access scale. A higher level implies every lower one.
type Level int

const (
	LevelNone Level = iota
	LevelView
	LevelCreate
	LevelModify
	LevelAdminister
)

// ErrInvalidLevel is returned by ParseLevel for unrecognised input.
var ErrInvalidLevel = errors.New("permission: invalid level")

var levelVerbs = map[Level]string{
	LevelView:       "ver",
	LevelCreate:     "crear",
	LevelModify:     "modificar",
	LevelAdminister: "administrar",
}

var levelNames = map[Level]string{
	LevelNone:       "NINGUNO",
	LevelView:       "VER",
	LevelCreate:     "CREAR",
	LevelModify:     "MODIFICAR",
	LevelAdminister: "ADMINISTRAR",
}

// Verb returns the display verb for a level. LevelNone has none.
func Verb(level Level) string {
	return levelVerbs[level]
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Satisfies reports whether l meets the required minimum.
func (l Level) Satisfies(min Level) bool {
	return l >= min
}

// Clamp forces an arbitrary integer onto the scale.
func Clamp(level int) Level {
	return Level(models.ClampLevel(level))
}

// ParseLevel accepts a number (clamped onto the scale), a level name or a verb.
func ParseLevel(value string) (Level, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return LevelNone, ErrInvalidLevel
	}
	if n, err := strconv.Atoi(value); err == nil {
		return Clamp(n), nil
	}
	for level, name := range levelNames {
		if strings.EqualFold(value, name) {
			return level, nil
		}
	}
	for level, verb := range levelVerbs {
		if strings.EqualFold(value, verb) {
			return level, nil
		}
	}
	return LevelNone, fmt.Errorf("%w %q", ErrInvalidLevel, value)
}

// Label composes the display name stored on a permission row.
func Label(roleName, moduleName string, level Level) string {
	verb := Verb(level)
	if verb == "" {
		return fmt.Sprintf("%s sin acceso a %s", roleName, moduleName)
	}
	return fmt.Sprintf("%s puede %s en %s", roleName, verb, moduleName)
}
