// Package harness runs scripted store scenarios.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: weekly_with_edit
//	description: "Editing a generated occurrence"
//	steps:
//	  - op: create_user
//	    name: alice
//	    as: alice
//	  - op: upsert_personal
//	    user: alice
//	    routine:
//	      id: gym
//	      day: 0
//	      at: "18:00"
//	      duration: 1h
//	      repeat: { cycle: 7, days: [0, 2, 4] }
//	  - op: range
//	    user: alice
//	    days: 7
//	    as: week
//	    expect:
//	      starts: ["0@18:00", "2@18:00", "4@18:00"]
//	  - op: upsert_personal
//	    user: alice
//	    routine: { from: "week[1]", at: "19:00" }
//	assertions:
//	  - type: routine_count
//	    user: alice
//	    count: 2
//
// Routine times are given as a day offset from the scenario epoch plus a
// time of day. Range results render starts as "day@HH:MM".
//
// # Assertion Types
//
//   - user_count: number of users
//   - public_count: number of public routines
//   - routine_count: number of persisted routines of a user
//   - document_contains: a flushed document contains the given text
//
// # Deterministic Testing
//
// Every run starts from an empty storage directory and draws ids from
// testutil.SequentialIDs, so traces are reproducible and can be compared
// against golden files with RunWithGolden.
package harness
