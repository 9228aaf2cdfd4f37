/*

This file contains the opaque identifier types for assets and accounts. The
ledger never interprets these beyond equality and emptiness; custody and
transfer mechanics live behind the chain provider port.

*/

package types

// Asset identifies a fungible asset (a token contract address in the source
// system). The zero value is invalid everywhere an asset is required.
type Asset string

// Account identifies an external account that can hold positions or custody.
// The zero value is invalid everywhere an account is required.
type Account string

func (a Asset) IsZero() bool   { return a == "" }
func (a Account) IsZero() bool { return a == "" }
