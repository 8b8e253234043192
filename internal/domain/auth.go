package domain

// ActorType identifies who triggered a state change.
type ActorType string

const (
	ActorTypeUser     ActorType = "USER"
	ActorTypeAdmin    ActorType = "ADMIN"
	ActorTypeProvider ActorType = "PROVIDER"
)
