/*
Package aspects provides ready-made setup callbacks for blueprints.

Each function returns a domain.SetupFunc. Aspects are composed by listing several of them
for one state; they run in declared order on entry and their cleanups run in the same
order on exit.

	bp := &domain.Blueprint{
		InitState: "green",
		States: map[string][]domain.SetupFunc{
			"green": {aspects.While(lightOn, lightOff), aspects.TransitionAfter(l, 3*time.Second, "amber")},
			"amber": {aspects.TransitionAfter(l, time.Second, "red")},
			"red":   {aspects.TransitionOnSignal(bus, "go", "green")},
		},
	}

Aspects that react to outside events (timers, signals) call back into the machine from
the event source. Those sources must deliver events on the goroutine that owns the
machine, which is what a loop.Loop is for.
*/
package aspects
