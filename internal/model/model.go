// Package model holds the persisted entities and the request payloads of
// the Mini App API.
//
// Entities serialize with the database column names (snake_case), while
// request payloads accept the camelCase keys the Mini App sends.
package model

import "github.com/shopspring/decimal"

func init() {
	// Prices and ratios go out as JSON numbers, the way the Mini App reads them.
	decimal.MarshalJSONWithoutQuotes = true
}
