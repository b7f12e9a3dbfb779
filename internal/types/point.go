// README: Shared value objects: integer grid points.
package types

import "fmt"

// Point is an integer grid coordinate.
type Point struct {
    X int
    Y int
}

func (p Point) String() string {
    return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
