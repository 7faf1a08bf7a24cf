// internal/models/registry.go
package models

import "github.com/jason-s-yu/park/internal/chain"

// GameRegistry is the single deployment-wide record. Admin and ServerWallet are fixed at
// initialization; Authority is always the address derived from (ProgramID, AuthoritySeed, AuthorityBump).
type GameRegistry struct {
	ProgramID     chain.Address `json:"program_id"`
	Admin         chain.Address `json:"admin"`
	ServerWallet  chain.Address `json:"server_wallet"`
	AuthoritySeed []byte        `json:"authority_seed"`
	AuthorityBump uint8         `json:"authority_bump"`
	Authority     chain.Address `json:"authority"`

	// RewardMint is zero until the reward mint has been created.
	RewardMint chain.Address `json:"reward_mint"`
	CreatedAt  int64         `json:"created_at"`
}

// PlayerScore is the reward owed to one player at settlement, in whole tokens.
type PlayerScore struct {
	Player chain.Address `json:"player"`
	Tokens uint64        `json:"tokens"`
}
