package feed

// Tally accumulates one player's view of a session.
type Tally struct {
	Me     string
	Rounds int
	Wins   int
	Losses int
	Ties   int
	Rolls  []int

	pendingWin bool
}

// NewTally returns an empty tally for the named player.
func NewTally(me string) *Tally {
	return &Tally{Me: me}
}

// Observe folds one event into the tally. The winner receives a
// congratulation before the public win line, so a win line that follows a
// congratulation closes a won round and any other win line a lost one.
func (t *Tally) Observe(ev Event) {
	switch ev.Kind {
	case KindRoll:
		if ev.Name == t.Me {
			t.Rolls = append(t.Rolls, ev.Value)
		}
	case KindCongrats:
		t.Wins++
		t.pendingWin = true
	case KindWin:
		t.Rounds++
		if t.pendingWin {
			t.pendingWin = false
		} else {
			t.Losses++
		}
	case KindTie:
		t.Rounds++
		t.Ties++
	}
}

// AverageRoll is the mean of the player's rolls, or 0 with no rolls.
func (t *Tally) AverageRoll() float64 {
	if len(t.Rolls) == 0 {
		return 0
	}
	sum := 0
	for _, r := range t.Rolls {
		sum += r
	}
	return float64(sum) / float64(len(t.Rolls))
}
