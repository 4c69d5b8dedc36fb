package worldmodel

// Point is a grid coordinate pair.
type Point struct {
	X, Y int32
}
