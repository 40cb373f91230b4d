package generic

// Void is the empty value, for a Result or Command that carries no data.
type Void = struct{}

func NewVoid() Void {
	return Void{}
}
