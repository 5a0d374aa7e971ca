package equilibrium

// aggregate row-sums each class's buffer (collapsing sub-strata) and
// combines the results PCE-weighted into out, implementing the multi-class
// aggregator described in §4.5: every flow aggregate the driver maintains
// is a PCE-weighted, stratum-collapsed sum across classes.
func aggregate(out []float64, classes []*Class, pick func(c *Class) *LinkLoads) {
	for i := range out {
		out[i] = 0
	}
	for _, c := range classes {
		buf := pick(c)
		for link, row := range buf.Values {
			sum := 0.0
			for _, v := range row {
				sum += v
			}
			out[link] += c.PCE * sum
		}
	}
}

// rowSum collapses a single class's buffer into a length-#links vector
// (Σ over sub-strata, without PCE weighting), used by the direction engine
// which needs per-class vectors before they are combined across classes.
func rowSum(buf *LinkLoads) []float64 {
	out := make([]float64, len(buf.Values))
	for link, row := range buf.Values {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		out[link] = sum
	}
	return out
}

// weightedDot computes Σ_links weight[link] * Σ_classes a[class][link] *
// b[class][link] — the Σ_links t′·Σ_c(·) pattern shared by the conjugate
// scalar and bi-conjugate weight formulas in §4.2.
func weightedDot(weight []float64, a, b [][]float64) float64 {
	total := 0.0
	for link := range weight {
		cross := 0.0
		for c := range a {
			cross += a[c][link] * b[c][link]
		}
		total += weight[link] * cross
	}
	return total
}

// subtractRowSums returns, per class, rowSum(minuend) - rowSum(subtrahend).
func subtractRowSums(minuend, subtrahend []*LinkLoads) [][]float64 {
	out := make([][]float64, len(minuend))
	for c := range minuend {
		a := rowSum(minuend[c])
		b := rowSum(subtrahend[c])
		for i := range a {
			a[i] -= b[i]
		}
		out[c] = a
	}
	return out
}
