// Package events defines the roster related events emitted on the event bus.
//
// Available event types:
//   - RunStartedEvent: an engine run began
//   - AssignmentEvent: an assignment was committed
//   - RemovalEvent: an assignment was displaced or stripped
//   - StrategyEvent: gap-repair strategy attempts and outcomes
//   - GapEvent: a coverage gap left unresolved
//   - RunCompletedEvent: an engine run finished
package events
