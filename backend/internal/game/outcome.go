package game

// Outcome is the result of a completed round.
type Outcome struct {
	// Max is the highest roll of the round.
	Max int

	// Tie is set when more than one participant rolled Max.
	Tie bool

	// Winner is the index of the participant who rolled Max when there is
	// no tie, and -1 otherwise.
	Winner int
}

// Adjudicate decides a round from rolls given in room order. It returns
// false when rolls is empty.
func Adjudicate(rolls ...int) (Outcome, bool) {
	if len(rolls) == 0 {
		return Outcome{Winner: -1}, false
	}

	out := Outcome{Max: rolls[0], Winner: 0}
	atMax := 1
	for i, r := range rolls[1:] {
		switch {
		case r > out.Max:
			out.Max = r
			out.Winner = i + 1
			atMax = 1
		case r == out.Max:
			atMax++
		}
	}

	if atMax > 1 {
		out.Tie = true
		out.Winner = -1
	}
	return out, true
}
