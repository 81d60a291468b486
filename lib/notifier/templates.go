package notifier

// Template keys used by the team membership flows
const (
	TemplateTeamAdded    = "team_added"
	TemplateTeamRemoved  = "team_removed"
	TemplateTeamRestored = "team_restored"
	TemplatePageAssigned = "page_assigned"
)

// DefaultTemplates are the mustache message templates used when the
// configuration does not override them
var DefaultTemplates = map[string]string{
	TemplateTeamAdded:    "You have been added to project {{project}} as {{role}}",
	TemplateTeamRemoved:  "You have been removed from project {{project}} ({{role}})",
	TemplateTeamRestored: "Your {{role}} access to project {{project}} has been restored",
	TemplatePageAssigned: "You have been assigned to {{count}} page(s) in project {{project}}",
}
