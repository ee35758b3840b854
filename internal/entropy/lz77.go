package entropy

// specialDistances is the short table of small (dx,dy) offsets that the
// distance code special-cases before falling back to the general
// "distance = decoded value" mapping (spec §4.3 "LZ77 distances favor
// nearby rows of the image being decoded"). Pairs are ordered by
// Manhattan-ish proximity, matching the locality the image raster
// exhibits.
var specialDistances = [][2]int{
	{0, 1}, {1, 0}, {1, 1}, {-1, 1}, {0, 2}, {2, 0}, {1, 2}, {-1, 2},
	{2, 1}, {-2, 1}, {2, 2}, {-2, 2}, {0, 3}, {3, 0}, {1, 3}, {-1, 3},
	{3, 1},
}

// distanceFromCode maps a decoded distance-cluster value to an actual
// back-reference distance (measured in already-decoded symbols), per
// spec §4.3: small codes index specialDistances scaled by the image row
// stride (dist_multiplier); codes at or beyond the table size are a
// direct distance offset by the table's span.
func distanceFromCode(code uint32, distMultiplier int) int {
	if distMultiplier == 0 {
		return int(code) + 1
	}
	if int(code) < len(specialDistances) {
		d := specialDistances[code]
		dist := d[0] + d[1]*distMultiplier
		if dist < 1 {
			dist = 1
		}
		return dist
	}
	return int(code) - len(specialDistances) + 1
}
