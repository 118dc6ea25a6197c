// Package flow holds the rule-based refinement controller and the routing
// table of the blog pipeline.
//
// The controller is pure: Decide maps the last score, best score, iteration
// counter and cap to the next iteration, route and stop reason. No model is
// consulted. Route translates a record into the next stage to execute.
package flow
