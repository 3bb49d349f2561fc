// Package mock provides Adapter, a transport.Transport that answers calls
// from registered stubs and recorded dump files instead of the network.
//
// Stubs are plain functions registered per action or per module function.
// Dump files are registered with one of two match policies: params
// insensitive, where any call to the same subject replays the record, or
// params sensitive, where only calls whose canonical params hash equals the
// recorded one do. A params-sensitive lookup that misses falls back to a
// params-insensitive record of the same subject.
//
//	m := mock.New()
//	_ = m.RegisterDumpFiles(files, dir, true)
//	c := client.New(m, auth.NewAnonymous("shop"))
//	res, err := c.CallFunction(ctx, "ShopModule", "getOrder", []any{42}, nil)
//	// m.UsedReturns() lists the match keys that answered
package mock
