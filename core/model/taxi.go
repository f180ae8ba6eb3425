package model

// UnreachableTime is the travel-time sentinel for routes that cannot be
// driven, e.g. across a disconnected or gridlocked map.
const UnreachableTime float64 = -1

// Route is a planned itinerary with its traversal time.
type Route struct {
	Nodes []Coord
	Time  float64
}

// Reachable reports whether the route can actually be driven.
func (r Route) Reachable() bool { return r.Time >= 0 }

// Unreachable returns the tagged no-route value.
func Unreachable() Route { return Route{Time: UnreachableTime} }

// Taxi exposes the state the broker reads from a cab. The broker never
// mutates a taxi directly; allocations and cancellations go through the
// world.
type Taxi interface {
	ID() string
	OnDuty() bool
	// Idle reports whether the taxi has no pending planned path.
	Idle() bool
	Location() Coord
	Account() float64
	// PlanPath returns the taxi's route between two coordinates, tagged
	// unreachable when no route exists.
	PlanPath(from, to Coord) Route
}
