// Package portfolio derives holdings, cash and valuation from a user's ledger.
//
// Everything in this package is a pure function of its inputs: the ledger is
// read from the database by the caller and market prices are resolved by the
// market package before a summary is computed.
package portfolio
