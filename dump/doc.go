// Package dump records live API calls to JSON files and reads them back.
//
// A dump file captures one call: its kind ("action", "moduleFunction" or a
// registered custom kind), the call subject, the redacted params, and either
// the returned value or the error. Files are written by Writer, usually from
// a recording client, and loaded by Reader, usually to feed a replay
// transport.
//
// Records are matched to calls by match key:
//
//	action.refreshCatalog
//	moduleFunction.ShopModule::listOrders
//	moduleFunction.ShopModule::listOrders.<sha256 of canonical params>
//
// The parameter hash uses the canonical JSON of internal/ir, so key order in
// objects never changes it while value types and list order do.
package dump
