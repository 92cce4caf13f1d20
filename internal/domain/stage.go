package domain

import (
	"fmt"
	"strings"
)

// Stage is a step in the candidate hiring pipeline.
type Stage string

const (
	StageScreening    Stage = "SCREENING"
	StageL1           Stage = "L1"
	StageL2           Stage = "L2"
	StageDirector     Stage = "DIRECTOR"
	StageHR           Stage = "HR"
	StageCompensation Stage = "COMPENSATION"
	StageBGCheck      Stage = "BG_CHECK"
	StageOffer        Stage = "OFFER"
)

// Stages lists the pipeline in progression order. The index of a stage in
// this slice is the only comparator used for transitions.
var Stages = []Stage{
	StageScreening,
	StageL1,
	StageL2,
	StageDirector,
	StageHR,
	StageCompensation,
	StageBGCheck,
	StageOffer,
}

// IndexOf returns the position of the stage in the pipeline.
func IndexOf(s Stage) (int, error) {
	for i, st := range Stages {
		if st == s {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidStage, string(s))
}

// IsForwardOrEqual reports whether moving from one stage to another keeps or
// advances the pipeline position.
func IsForwardOrEqual(from, to Stage) (bool, error) {
	fromIdx, err := IndexOf(from)
	if err != nil {
		return false, err
	}
	toIdx, err := IndexOf(to)
	if err != nil {
		return false, err
	}
	return toIdx >= fromIdx, nil
}

// ParseStage converts a token into a Stage, accepting any letter case.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToUpper(strings.TrimSpace(raw)))
	if _, err := IndexOf(s); err != nil {
		return "", err
	}
	return s, nil
}

// IsValid checks if the stage is one of the pipeline stages.
func (s Stage) IsValid() bool {
	_, err := IndexOf(s)
	return err == nil
}

// IsFinal returns true for the last stage of the pipeline.
func (s Stage) IsFinal() bool {
	return s == Stages[len(Stages)-1]
}
