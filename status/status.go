// Package status derives a single page status from the statuses and role
// assignments of the page's environment rows.
//
// Aggregate is a pure function: it reads only its arguments, and the result
// does not depend on the order of the rows.
package status

import (
	"github.com/qatrack/models"
)

// Label is an aggregated, user-facing page status
type Label string

const (
	NeedAssignment    Label = "need_assignment"
	TesterNotAssigned Label = "tester_not_assigned"
	QANotAssigned     Label = "qa_not_assigned"
	InFixing          Label = "in_fixing"
	NeedsReview       Label = "needs_review"
	OnHold            Label = "on_hold"
	Completed         Label = "completed"
	QAPending         Label = "qa_pending"
	NotStarted        Label = "not_started"
	InProgress        Label = "in_progress"
)

var displayNames = map[Label]string{
	NeedAssignment:    "Need Assignment",
	TesterNotAssigned: "Tester Not Assigned",
	QANotAssigned:     "QA Not Assigned",
	InFixing:          "In Fixing",
	NeedsReview:       "Needs Review",
	OnHold:            "On Hold",
	Completed:         "Completed",
	QAPending:         "Testing Done, QA Pending",
	NotStarted:        "Not Started",
	InProgress:        "In Progress",
}

// Display returns the human-readable form of the label
func (l Label) Display() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// EnvState is what the aggregator needs to know about one environment row.
// The Has* flags are effective presence: the environment's own binding or
// the page-level default.
type EnvState struct {
	Status      models.TestingStatus
	QAStatus    models.QAStatus
	HasATTester bool
	HasFTTester bool
	HasQA       bool
}

// Policy names the roles every linked environment is expected to have staffed
type Policy struct {
	RequireATTester bool
	RequireFTTester bool
	RequireQA       bool
}

// PolicyForTeam expects exactly the page-bound roles that the active team holds.
// With no page-bound roles on the team it falls back to def.
func PolicyForTeam(roles []models.TeamRole, def Policy) Policy {
	var p Policy
	found := false
	for _, r := range roles {
		switch r {
		case models.TeamRoleATTester:
			p.RequireATTester, found = true, true
		case models.TeamRoleFTTester:
			p.RequireFTTester, found = true, true
		case models.TeamRoleQA:
			p.RequireQA, found = true, true
		}
	}
	if !found {
		return def
	}
	return p
}

// Rule is one row of the precedence table
type Rule struct {
	Label Label
	Match func(envs []EnvState, p Policy) bool
}

// Rules is the precedence table, highest first. The last rule always matches.
var Rules = []Rule{
	{NeedAssignment, func(envs []EnvState, _ Policy) bool {
		return len(envs) == 0
	}},
	{TesterNotAssigned, func(envs []EnvState, p Policy) bool {
		return anyEnv(envs, func(e EnvState) bool {
			return (p.RequireATTester && !e.HasATTester) || (p.RequireFTTester && !e.HasFTTester)
		})
	}},
	{QANotAssigned, func(envs []EnvState, p Policy) bool {
		return p.RequireQA && anyEnv(envs, func(e EnvState) bool {
			return !e.HasQA && e.QAStatus != models.QANA
		})
	}},
	{InFixing, func(envs []EnvState, _ Policy) bool {
		return anyEnv(envs, statusIs(models.TestingInFixing))
	}},
	{NeedsReview, func(envs []EnvState, _ Policy) bool {
		return anyEnv(envs, statusIs(models.TestingNeedsReview))
	}},
	{OnHold, func(envs []EnvState, _ Policy) bool {
		return anyEnv(envs, statusIs(models.TestingOnHold))
	}},
	{Completed, func(envs []EnvState, _ Policy) bool {
		return allEnv(envs, func(e EnvState) bool {
			return e.Status == models.TestingCompleted && qaDone(e.QAStatus)
		})
	}},
	{QAPending, func(envs []EnvState, _ Policy) bool {
		return allEnv(envs, statusIs(models.TestingCompleted))
	}},
	{NotStarted, func(envs []EnvState, _ Policy) bool {
		return allEnv(envs, func(e EnvState) bool {
			return e.Status == models.TestingNotStarted || e.Status == ""
		})
	}},
	{InProgress, func([]EnvState, Policy) bool {
		return true
	}},
}

// Aggregate returns the label of the first rule in Rules that matches
func Aggregate(envs []EnvState, p Policy) Label {
	for _, rule := range Rules {
		if rule.Match(envs, p) {
			return rule.Label
		}
	}
	return InProgress
}

// FromPage builds the aggregator input for a page, falling back to the
// page-level role defaults where an environment has no binding of its own
func FromPage(page models.Page) []EnvState {
	envs := make([]EnvState, 0, len(page.Environments))
	for _, row := range page.Environments {
		envs = append(envs, EnvState{
			Status:      row.Status,
			QAStatus:    row.QAStatus,
			HasATTester: row.AtTesterID != nil || page.AtTesterID != nil,
			HasFTTester: row.FtTesterID != nil || page.FtTesterID != nil,
			HasQA:       row.QAID != nil || page.QAID != nil,
		})
	}
	return envs
}

// Summarize counts pages per label
func Summarize(labels []Label) map[Label]int {
	counts := make(map[Label]int, len(labels))
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

func qaDone(s models.QAStatus) bool {
	return s == models.QACompleted || s == models.QANA
}

func statusIs(s models.TestingStatus) func(EnvState) bool {
	return func(e EnvState) bool { return e.Status == s }
}

func anyEnv(envs []EnvState, pred func(EnvState) bool) bool {
	for _, e := range envs {
		if pred(e) {
			return true
		}
	}
	return false
}

func allEnv(envs []EnvState, pred func(EnvState) bool) bool {
	for _, e := range envs {
		if !pred(e) {
			return false
		}
	}
	return true
}
