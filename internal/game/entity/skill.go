package entity

import (
	"errors"
	"fmt"
	"math"
)

// Skill defines a trainable skill and its XP curve.
//
// The curve is geometric: advancing from level L requires
// round(LevelUpLimit * NextLevelRatio^(L-1)) XP at that level. XP spent on a
// level-up carries over to the next level.
type Skill struct {
	ID          SkillID
	Name        string
	Description string
	// InitialLevel is the level a player starts at when the skill is first
	// granted. Must be >= 1.
	InitialLevel int
	// LevelUpLimit is the XP required to advance from level 1 to level 2.
	LevelUpLimit int
	// NextLevelRatio scales the XP requirement per level. Must be >= 1.0.
	NextLevelRatio float64
}

// Validate checks that the Skill satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (s *Skill) Validate() error {
	var errs []error
	if s.ID < 0 {
		errs = append(errs, errors.New("ID must be >= 0"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if s.InitialLevel < 1 {
		errs = append(errs, errors.New("InitialLevel must be >= 1"))
	}
	if s.LevelUpLimit < 1 {
		errs = append(errs, errors.New("LevelUpLimit must be >= 1"))
	}
	if s.NextLevelRatio < 1.0 {
		errs = append(errs, errors.New("NextLevelRatio must be >= 1.0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill %d validation failed: %v", s.ID, errs)
	}
	return nil
}

// XPToAdvance returns the XP needed to advance from the given level to the
// next one.
//
// Precondition: level >= 1.
func (s *Skill) XPToAdvance(level int) int {
	return int(math.Round(float64(s.LevelUpLimit) * math.Pow(s.NextLevelRatio, float64(level-1))))
}
