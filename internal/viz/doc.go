// Package viz renders solutions in the terminal.
//
//   - [Plot], [PlotMany]: static asciigraph charts of one or more trajectories
//   - [Model]: a Bubble Tea program that integrates step by step and redraws
//     the solution as it grows
//
// # Key Bindings
//
//	Space - Pause/Resume integration
//	R     - Restart from the initial value
//	Tab   - Select the next equation parameter
//	↑/↓   - Scale the selected parameter by ±5% and restart
//	[/]   - Step back/forward through the recorded samples
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
