// Package domain contains the notification rule model and its match
// predicate.
package domain

import (
	"reflect"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Notification links an event's occurrences to a distribution list. The
// payload filter decides which trigger contexts the rule applies to;
// the environments list optionally restricts it to named environments.
type Notification struct {
	ID                 snowflake.ID                `gorm:"primaryKey" json:"id"`
	EventID            snowflake.ID                `gorm:"not null;index" json:"event_id"`
	DistributionListID snowflake.ID                `gorm:"not null;index" json:"distribution_list_id"`
	Name               string                      `gorm:"type:text;not null" json:"name"`
	PayloadFilter      datatypes.JSONMap           `gorm:"type:json;not null;default:'{}'" json:"payload_filter"`
	ExtraContext       datatypes.JSONMap           `gorm:"type:json;not null;default:'{}'" json:"extra_context"`
	Environments       datatypes.JSONSlice[string] `gorm:"type:json" json:"environments"`
	CreatedAt          time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }

// Matches reports whether the notification applies to a trigger context.
// An empty payload filter matches everything; otherwise every filter key
// must be present in the context with an equal value.
func (n *Notification) Matches(context map[string]any) bool {
	if len(n.PayloadFilter) == 0 {
		return true
	}
	for key, want := range n.PayloadFilter {
		got, ok := context[key]
		if !ok {
			return false
		}
		if !valueEqual(want, got) {
			return false
		}
	}
	return true
}

// MatchesEnvirons reports whether the notification overlaps the requested
// environments. A notification with no environments is unrestricted; an
// empty request matches everything.
func (n *Notification) MatchesEnvirons(environs []string) bool {
	if len(environs) == 0 || len(n.Environments) == 0 {
		return true
	}
	for _, have := range n.Environments {
		for _, want := range environs {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Match filters notifications down to those applying to the trigger
// context and requested environments, preserving input order.
func Match(notifications []Notification, context map[string]any, environs []string) []Notification {
	matched := make([]Notification, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		if n.Matches(context) && n.MatchesEnvirons(environs) {
			matched = append(matched, *n)
		}
	}
	return matched
}

// valueEqual compares filter and context values. JSON round-trips turn all
// numbers into float64, so scalars are compared through their normalized
// form; nested maps and slices compare deeply.
func valueEqual(want, got any) bool {
	if reflect.DeepEqual(want, got) {
		return true
	}
	wf, wok := toFloat(want)
	gf, gok := toFloat(got)
	if wok && gok {
		return wf == gf
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
