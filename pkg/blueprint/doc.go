/*
Package blueprint loads machine blueprints from YAML documents.

A document names an initial state and lists, per state, the aspects to run on entry.
Aspects are looked up by name in a registry.Registry and configured with the keys under
"with":

	name: traffic-light
	initial: green
	states:
	  green:
	    - use: print
	      with: {message: "GREEN"}
	    - use: transition_after
	      with: {delay: 3s, to: amber}
	  amber:
	    - use: transition_after
	      with: {delay: 1s, to: red}
	  red:
	    - use: transition_on_signal
	      with: {signal: go, to: green}
	on_end:
	  - use: print
	    with: {message: "lights out"}

JSON documents are accepted as well, since YAML is a superset of JSON.
*/
package blueprint
