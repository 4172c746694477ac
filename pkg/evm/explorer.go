package evm

import (
	"strings"
)

// DefaultExplorerBase is the IOTA EVM testnet explorer.
const DefaultExplorerBase = "https://explorer.evm.testnet.iotaledger.net"

// ExplorerTxURL builds the explorer link for a transaction hash.
func ExplorerTxURL(base, hash string) string {
	return explorerBase(base) + "/tx/" + hash
}

// ExplorerAddressURL builds the explorer link for an address.
func ExplorerAddressURL(base, addr string) string {
	return explorerBase(base) + "/address/" + addr
}

func explorerBase(base string) string {
	if base == "" {
		base = DefaultExplorerBase
	}
	return strings.TrimRight(base, "/")
}
