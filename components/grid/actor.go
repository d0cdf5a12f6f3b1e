package grid

import "context"

// Actor identifies who issued a dashboard mutation.
type Actor struct {
	Email    string
	Role     Role
	TenantID string
}

type actorContextKey struct{}

// ContextWithActor stores the actor on ctx.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor stored by ContextWithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
