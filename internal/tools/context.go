package tools

import "context"

type athleteIDKey struct{}

// ContextWithAthleteID attaches the authenticated athlete's ID so tool
// handlers invoked by the model can resolve credentials for the right
// account.
func ContextWithAthleteID(ctx context.Context, athleteID string) context.Context {
	return context.WithValue(ctx, athleteIDKey{}, athleteID)
}

// AthleteIDFromContext returns the athlete ID set by
// ContextWithAthleteID, or "" when none is present.
func AthleteIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(athleteIDKey{}).(string)
	return id
}
