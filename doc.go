/*
Package quickscope is a deterministic engine for multi-turn structured
interviews, driven by a declarative graph of stages.

A flow document declares stages of seven kinds: message, questions,
confirm, gate, action, branch, and loop. The engine interprets the
graph one turn at a time: it ingests the user's answer (asking at most
one clarifying follow-up when the answer is too thin to store), writes
it into a nested slot store, then auto-advances through non-interactive
stages until the next prompt is due. Every decision is rule-based and
reproducible: given the same session state and input, a turn always
produces the same result.

# Safety rails

Externally-authored graphs cannot be trusted to terminate. The engine
validates every transition target at load time, bounds each turn with a
step ceiling, and watches the conversation log for a prompt repeating
itself, forcing progression when the interaction is operationally
stuck even though every declared condition passes.

# Usage

	e := quickscope.New(source)

	turn, err := e.StartSession(ctx, "intake_v1")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(turn.Output)

	for !turn.Done {
		turn, err = e.ProcessTurn(ctx, turn.SessionID, readLine())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(turn.Output)
	}

Sessions persist through a pluggable state store (in-memory, local
files, or Redis) and survive process restarts; a turn is the unit of
persistence.
*/
package quickscope
