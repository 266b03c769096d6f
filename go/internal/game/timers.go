package game

import "time"

const (
	tagPhase = "phase"
	tagTurn  = "turn"
)

// afterPhase schedules fn for the current phase only. A callback that arrives
// after the phase was left, even one already queued, is dropped.
func (g *Game) afterPhase(delay time.Duration, fn func()) {
	epoch := g.phaseEpoch
	g.sched.Schedule(delay, tagPhase, func() {
		if g.phaseEpoch != epoch {
			g.logger.Debug().Uint64("epoch", epoch).Msg("dropping stale phase timer")
			return
		}
		fn()
	})
}

// afterTurn schedules fn for the current turn only.
func (g *Game) afterTurn(delay time.Duration, fn func()) {
	turn := g.turnID
	g.sched.Schedule(delay, tagTurn, func() {
		if g.turnID != turn {
			g.logger.Debug().Uint64("turn", turn).Msg("dropping stale settle timer")
			return
		}
		fn()
	})
}

// nextTick schedules fn on the n-th whole second after the phase started, so
// ticks do not drift by the time spent handling the previous one.
func (g *Game) nextTick(n int, fn func()) {
	deadline := g.phaseStarted.Add(time.Duration(n) * time.Second)
	g.afterPhase(deadline.Sub(g.sched.Now()), fn)
}

func (g *Game) startCountdown() {
	g.countdown = g.cfg.CountdownSeconds
	if g.countdown <= 0 {
		g.enter(Preview)
		return
	}
	g.nextTick(1, g.countdownTick)
}

func (g *Game) countdownTick() {
	g.countdown--
	g.emit(Event{Type: EventCountdownTick, Seconds: g.countdown})
	if g.countdown <= 0 {
		g.enter(Preview)
		return
	}
	g.nextTick(g.cfg.CountdownSeconds-g.countdown+1, g.countdownTick)
}

func (g *Game) startPreview() {
	if g.cfg.PreviewSeconds <= 0 {
		g.enter(Playing)
		return
	}
	for i := range g.deck {
		g.deck[i].Flipped = true
	}
	g.afterPhase(time.Duration(g.cfg.PreviewSeconds)*time.Second, g.endPreview)
}

func (g *Game) endPreview() {
	for i := range g.deck {
		g.deck[i].Flipped = g.deck[i].Matched
	}
	g.enter(Playing)
}

func (g *Game) startPlaying() {
	g.elapsed = 0
	g.nextTick(1, g.elapsedTick)
}

func (g *Game) elapsedTick() {
	g.elapsed++
	g.emit(Event{Type: EventElapsedTick, Seconds: g.elapsed})
	if g.evaluate() {
		return
	}
	g.nextTick(g.elapsed+1, g.elapsedTick)
}
