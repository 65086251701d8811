// Package srs implements the two-factor spaced-repetition schedule used by
// recall: a pure transition from one review outcome to the next schedule,
// and the due-set selection that decides which cards a session sees.
//
// Nothing in this package performs I/O or reads the wall clock. Callers pass
// the evaluation instant explicitly:
//
//	state := srs.NewState(now)
//	state, err := srs.Transition(state, srs.Perfect, now)
//	if err != nil {
//	    return err
//	}
//	due := srs.SelectDue(cards, now, 0) // 0 → DefaultDueLimit
package srs
