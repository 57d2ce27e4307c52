package application

import "expvar"

// Counters exposed on /api/debug/vars.
var (
	registrationsTotal = expvar.NewInt("registrations_total")
	loginsTotal        = expvar.NewInt("logins_total")
	loginFailuresTotal = expvar.NewInt("login_failures_total")
	projectsCreated    = expvar.NewInt("projects_created_total")
	projectsClaimed    = expvar.NewInt("projects_claimed_total")
	claimConflicts     = expvar.NewInt("project_claim_conflicts_total")
	tasksCompleted     = expvar.NewInt("tasks_completed_total")
	scorePointsAwarded = expvar.NewInt("score_points_awarded_total")
)
