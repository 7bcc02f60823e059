// Package harness runs contest scenarios described in YAML.
//
// A scenario lists feed events and assertions about the result:
//
//	name: penalty_example
//	description: one wrong answer before the solve costs 20 minutes
//	info: {id: test, duration: "5:00:00", scoreboard_freeze_duration: "1:00:00", penalty_time: 20}
//	events:
//	  - {type: judgement-types, data: {id: AC, solved: true}}
//	  - {type: teams, data: {id: t1}}
//	  ...
//	assertions:
//	  - {type: standing, team: t1, solved: 1, penalty: 50}
//
// Each scenario runs against a fresh contest with a view router attached,
// so assertions can target any role projection. RunWithGolden snapshots
// the canonical scoreboard under testdata/golden.
package harness
