package domain

// MintEntry pairs a token mint with the metadata written for it.
type MintEntry struct {
	Mint string // base58 token mint address
	Name string // display name, at most 32 bytes
	URI  string // off-chain JSON metadata URI, at most 200 bytes
}
