package grid

// Interpolation for partially fetched layers. Cells the upstream source did
// not return are filled from whatever cells did return data: axis-linear
// (bilinear when both axes contribute) for scalar fields, nearest-neighbor
// for angular fields where linear blending is meaningless across the wrap.

// axisNeighbor finds the nearest valid cell walking from (r, c) along
// (dr, dc). Returns the steps taken and whether one was found.
func axisNeighbor(size int, ok []bool, r, c, dr, dc int) (steps int, value int, found bool) {
	nr, nc := r+dr, c+dc
	steps = 1
	for nr >= 0 && nr < size && nc >= 0 && nc < size {
		idx := nr*size + nc
		if ok[idx] {
			return steps, idx, true
		}
		nr += dr
		nc += dc
		steps++
	}
	return 0, 0, false
}

// ringNearest finds the valid cell closest to (r, c) by expanding square
// rings. Scan order is fixed, so ties resolve deterministically.
func ringNearest(size int, ok []bool, r, c int) (int, bool) {
	for radius := 1; radius < size; radius++ {
		for nr := r - radius; nr <= r+radius; nr++ {
			if nr < 0 || nr >= size {
				continue
			}
			for nc := c - radius; nc <= c+radius; nc++ {
				if nc < 0 || nc >= size {
					continue
				}
				// Only the ring boundary, inner cells were already visited.
				if nr != r-radius && nr != r+radius && nc != c-radius && nc != c+radius {
					continue
				}
				idx := nr*size + nc
				if ok[idx] {
					return idx, true
				}
			}
		}
	}
	return 0, false
}

// FillLinear fills every invalid cell of a flat row-major size×size scalar
// layer. Each axis contributes a distance-weighted estimate between its two
// nearest valid cells; with both axes present the fill is bilinear. Cells
// with no axis neighbors fall back to the ring-nearest valid cell. Returns
// the number of cells filled.
func FillLinear(size int, values []float64, ok []bool) int {
	filled := 0
	out := make([]float64, len(values))
	copy(out, values)

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			idx := r*size + c
			if ok[idx] {
				continue
			}

			var estimates []float64
			if e, found := axisEstimate(size, values, ok, r, c, 1, 0); found {
				estimates = append(estimates, e)
			}
			if e, found := axisEstimate(size, values, ok, r, c, 0, 1); found {
				estimates = append(estimates, e)
			}

			switch len(estimates) {
			case 2:
				out[idx] = (estimates[0] + estimates[1]) / 2
			case 1:
				out[idx] = estimates[0]
			default:
				if near, found := ringNearest(size, ok, r, c); found {
					out[idx] = values[near]
				} else {
					continue // nothing valid anywhere, caller handles
				}
			}
			filled++
		}
	}

	copy(values, out)
	return filled
}

// axisEstimate interpolates along one axis between the nearest valid cells
// on each side. One-sided neighbors extrapolate as a constant.
func axisEstimate(size int, values []float64, ok []bool, r, c, dr, dc int) (float64, bool) {
	sBefore, iBefore, hasBefore := axisNeighbor(size, ok, r, c, -dr, -dc)
	sAfter, iAfter, hasAfter := axisNeighbor(size, ok, r, c, dr, dc)

	switch {
	case hasBefore && hasAfter:
		t := float64(sBefore) / float64(sBefore+sAfter)
		return values[iBefore]*(1-t) + values[iAfter]*t, true
	case hasBefore:
		return values[iBefore], true
	case hasAfter:
		return values[iAfter], true
	}
	return 0, false
}

// FillNearest fills every invalid cell with the value of the nearest valid
// cell. Used for angular layers (aspect) where averaging across the compass
// wrap would invent directions.
func FillNearest(size int, values []float64, ok []bool) int {
	filled := 0
	out := make([]float64, len(values))
	copy(out, values)

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			idx := r*size + c
			if ok[idx] {
				continue
			}
			if near, found := ringNearest(size, ok, r, c); found {
				out[idx] = values[near]
				filled++
			}
		}
	}

	copy(values, out)
	return filled
}
