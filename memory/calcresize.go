package memory

// Calcresize implements the growth/shrink heuristic spec.md §4.4
// attributes to the original dstring/vector/array/table implementations
// (`eel_calcresize`): grow by a factor of 3/2 with a base floor so
// repeated single-element appends don't reallocate every time; shrink
// only once capacity exceeds twice the occupied length, and even then
// only down to 3/2 of the requested length, so a shrink doesn't
// immediately re-trigger a grow on the next append (the "defensive
// hysteresis" spec.md calls for).
func Calcresize(currentCap, requiredLen int) int {
	const floor = 16
	if requiredLen <= currentCap {
		if currentCap > 2*requiredLen && requiredLen > 0 {
			shrunk := requiredLen * 3 / 2
			if shrunk < floor {
				shrunk = floor
			}
			return shrunk
		}
		return currentCap
	}
	newCap := currentCap
	if newCap < floor {
		newCap = floor
	}
	for newCap < requiredLen {
		newCap = newCap * 3 / 2
		if newCap < floor {
			newCap = floor
		}
	}
	return newCap
}
