package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// UnlimitedLimit is the single sentinel for "no cap" in plan limits. The
// legacy catalogs used 0 in the student plans and -1 in the company plans;
// stored data is normalized to -1 on migration and 0 now means a hard cap
// of zero.
const UnlimitedLimit = -1

type SubscriptionPlan struct {
	BaseModel
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Audience    SubjectType    `gorm:"type:varchar(20);not null;index" json:"audience"`
	Price       float64        `gorm:"not null" json:"price"`
	Currency    string         `gorm:"default:'INR'" json:"currency"`
	Period      PlanPeriod     `gorm:"type:varchar(10);not null" json:"period"`
	Description string         `json:"description"`
	Features    datatypes.JSON `json:"features"` // ["5 chats per month", ...]
	Limits      datatypes.JSON `json:"limits"`   // {"chats": 5, "projects": 2, ...}, -1 = unlimited
	HasTrial    bool           `gorm:"default:false" json:"has_trial"`
	TrialPrice  float64        `gorm:"default:0" json:"trial_price"`
	TrialDays   int            `gorm:"default:0" json:"trial_days"`
	Popular     bool           `gorm:"default:false" json:"popular"`
	Active      bool           `gorm:"default:true" json:"active"`
}

// LimitFor returns the plan's quota for the given action kind. A kind the
// plan does not mention is a zero cap, not unlimited.
func (p *SubscriptionPlan) LimitFor(kind ActionKind) (int, error) {
	limits, err := p.LimitMap()
	if err != nil {
		return 0, err
	}
	return limits[string(kind)], nil
}

func (p *SubscriptionPlan) LimitMap() (map[string]int, error) {
	limits := map[string]int{}
	if len(p.Limits) == 0 {
		return limits, nil
	}
	if err := json.Unmarshal(p.Limits, &limits); err != nil {
		return nil, err
	}
	return limits, nil
}
