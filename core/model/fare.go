package model

// Coord identifies a junction in the service area.
type Coord struct {
	X int
	Y int
}

// Less orders coordinates lexicographically, X before Y. It exists so fare
// processing can iterate the board in a stable order.
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// FareKey uniquely identifies a fare. Registering the same triplet twice
// refers to the same fare: a node carries at most one active request at a
// time.
type FareKey struct {
	Origin      Coord
	Destination Coord
	CallTime    int64
}

// Fare represents one ride request tracked by the broker.
type Fare struct {
	Origin      Coord
	Destination Coord
	CallTime    int64

	// Price is 0 until the pricing engine has quoted the fare. A fare is
	// priced exactly once.
	Price float64

	// AssignedTaxi is empty until the matching engine commits a taxi.
	AssignedTaxi string

	// Bidders lists taxi handles in bid-arrival order. Bids are append-only
	// and not deduplicated here.
	Bidders []string
}

// Key returns the identifying triplet of the fare.
func (f *Fare) Key() FareKey {
	return FareKey{Origin: f.Origin, Destination: f.Destination, CallTime: f.CallTime}
}

// Priced reports whether the fare has been quoted.
func (f *Fare) Priced() bool { return f.Price != 0 }

// Allocated reports whether a taxi has been committed to the fare.
func (f *Fare) Allocated() bool { return f.AssignedTaxi != "" }
