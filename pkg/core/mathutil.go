package core

// SafeDivision returns a / b, or a unchanged when b is zero
func SafeDivision(a, b float64) float64 {
	if b == 0 {
		return a
	}
	return a / b
}

// SafeDivisionInt returns a / b, or a unchanged when b is zero
func SafeDivisionInt(a, b int) int {
	if b == 0 {
		return a
	}
	return a / b
}

// SafeRemainder returns a % b, or a unchanged when b is zero
func SafeRemainder(a, b int) int {
	if b == 0 {
		return a
	}
	return a % b
}

// Clamp01 clamps t to [0, 1]
func Clamp01(t float64) float64 {
	return max(0, min(1, t))
}

// ClosestPointOnSegment returns the point on segment ab nearest to p.
// A zero-length segment returns a.
func ClosestPointOnSegment(a, b, p Vec3) Vec3 {
	ab := b.Subtract(a)
	t := SafeDivision(p.Subtract(a).Dot(ab), ab.LengthSquared())
	return a.Add(ab.Multiply(Clamp01(t)))
}
