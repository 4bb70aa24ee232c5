package models

import (
	"errors"
	"strings"
)

var ErrInvalidMode = errors.New("invalid physiological mode")

type PhysiologicalMode string

const (
	ModeRegular           PhysiologicalMode = "regular"
	ModePostpartum        PhysiologicalMode = "postpartum"
	ModeBreastfeeding     PhysiologicalMode = "breastfeeding"
	ModePerimenopause     PhysiologicalMode = "perimenopause"
	ModePostContraception PhysiologicalMode = "post_contraception"
)

func PhysiologicalModes() []PhysiologicalMode {
	return []PhysiologicalMode{
		ModeRegular,
		ModePostpartum,
		ModeBreastfeeding,
		ModePerimenopause,
		ModePostContraception,
	}
}

// ParsePhysiologicalMode maps stored values, including legacy spellings, to a mode.
// An empty value is the regular mode.
func ParsePhysiologicalMode(raw string) (PhysiologicalMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "regular", "none":
		return ModeRegular, nil
	case "postpartum":
		return ModePostpartum, nil
	case "breastfeeding":
		return ModeBreastfeeding, nil
	case "perimenopause":
		return ModePerimenopause, nil
	case "post_contraception", "post-contraception", "stoppingpills", "post_ocp":
		return ModePostContraception, nil
	default:
		return "", ErrInvalidMode
	}
}

// Normalize treats unknown or empty values as regular.
func (mode PhysiologicalMode) Normalize() PhysiologicalMode {
	parsed, err := ParsePhysiologicalMode(string(mode))
	if err != nil {
		return ModeRegular
	}
	return parsed
}

func (mode PhysiologicalMode) IsSpecial() bool {
	return mode.Normalize() != ModeRegular
}

// SuppressesOverdueCheck reports modes where a missing period is expected.
func (mode PhysiologicalMode) SuppressesOverdueCheck() bool {
	switch mode.Normalize() {
	case ModePostpartum, ModeBreastfeeding:
		return true
	default:
		return false
	}
}
