// Package roster implements the daily staff-to-student assignment engine.
//
// Given the day's staff and student rosters and a schedule board, a run
// performs a greedy direct pass per (program, session) and then repairs
// residual coverage gaps with four strategies of increasing cost: direct
// placement, simple swap, bounded-depth chain swap, and cross-session
// relocation.
//
// Key components:
//   - Engine: orchestrates a run and emits events, metrics, and run logs.
//   - Rules: the single validation authority; no strategy bypasses it.
//   - Filter: narrows a slot query to team-eligible, available staff and
//     partitions them into preferred and fallback tiers.
//   - Ranker: orders students by need and staff by role hierarchy, with
//     bounded PM-session jitter to spread repeat pairings.
//   - Overlay: a speculative snapshot that lets multi-step moves be
//     validated end to end before the board changes.
//
// A run never aborts: rule failures steer the search, unresolved gaps are
// returned as diagnostics, and a malformed board degrades to empty query
// results. Termination is guaranteed by the pass, chain-depth, and
// reshuffle bounds in Config together with the visited-staff cycle guard.
package roster
