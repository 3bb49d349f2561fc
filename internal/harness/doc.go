// Package harness runs replay scenarios: YAML files that register recorded
// dump files on a mock adapter, make calls through a client, and check what
// each call returned and which records answered it.
//
// # Scenario Format
//
//	name: checkout_replay
//	description: "Orders replay from recorded dumps"
//	dumps:
//	  - file: dumps/get_order.json        # relative to the scenario file
//	  - file: dumps/get_order_7.json
//	    match_params: true
//	steps:
//	  - module: ShopModule
//	    function: getOrder
//	    params: [42]
//	    expect:
//	      return: { status: paid }         # subset match
//	  - module: ShopModule
//	    function: getOrder
//	    params: [7]
//	    expect:
//	      error_class: ShopError
//	  - action: ping
//	expect_used: 2
//	assertions:
//	  - type: used_order
//	    keys: [moduleFunction.ShopModule::getOrder]
//
// A step without expect only has to succeed. Expected returns use subset
// semantics for objects: keys missing from the expectation are ignored.
// Numbers compare by value, so 42 in YAML equals 42 in a dump file.
//
// # Assertion Types
//
//   - used_contains: the match key answered at least one call
//   - used_order: the match keys answered calls in this relative order
//   - used_count: the match key answered exactly count calls, or, without
//     a key, count calls were answered in total
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the call log against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
