package pairing

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// AssignHome picks the home player for an unordered pairing. The result only
// depends on the scope and the pair itself, so it can be shown before any
// match row exists and is the same whichever order a and b are passed in.
// Across many pairs the hash parity splits home duties roughly evenly.
func AssignHome(divisionID, tournamentID, a, b int) int {
	low, high := a, b
	if low > high {
		low, high = high, low
	}
	if xxhash.Sum64String(pairKey(tournamentID, divisionID, low, high))%2 == 0 {
		return low
	}
	return high
}

// AssignSides returns (home, away) for a pairing using AssignHome.
func AssignSides(divisionID, tournamentID, a, b int) (home, away int) {
	home = AssignHome(divisionID, tournamentID, a, b)
	if home == a {
		return a, b
	}
	return b, a
}

func pairKey(tournamentID, divisionID, low, high int) string {
	buf := make([]byte, 0, 48)
	buf = strconv.AppendInt(buf, int64(tournamentID), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(divisionID), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(low), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(high), 10)
	return string(buf)
}
