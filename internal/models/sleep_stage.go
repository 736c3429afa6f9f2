package models

import "strings"

// SleepStage is the canonical bucket a sleep segment's minutes accrue to.
type SleepStage int

const (
	StageUnknown SleepStage = iota
	StageAwake
	StageRem
	StageCore
	StageDeep
)

// ClassifySleepStage maps a platform-supplied stage label to a canonical
// stage by case-insensitive substring match. Platforms disagree on naming:
// HealthKit reports "ASLEEP"/"AWAKE"/"CORE"/"DEEP"/"REM" while Health
// Connect variants report "light" for core sleep. Match order matters for
// labels carrying several tokens: awake wins over rem, rem over core, core
// over deep.
func ClassifySleepStage(label string) SleepStage {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "AWAKE"):
		return StageAwake
	case strings.Contains(upper, "REM"):
		return StageRem
	case strings.Contains(upper, "CORE"),
		strings.Contains(upper, "ASLEEP"),
		strings.Contains(upper, "LIGHT"):
		return StageCore
	case strings.Contains(upper, "DEEP"):
		return StageDeep
	}
	return StageUnknown
}
