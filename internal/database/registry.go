// internal/database/registry.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/park/internal/game"
	"github.com/jason-s-yu/park/internal/models"
)

func (t *pgTx) GetRegistry(ctx context.Context) (*models.GameRegistry, error) {
	q := `
		SELECT program_id, admin, server_wallet, authority_seed, authority_bump, authority, reward_mint, created_at
		FROM game_registry WHERE id = 1 FOR UPDATE
	`
	var (
		reg                                            models.GameRegistry
		programID, admin, server, authority, rewardMnt []byte
		bump                                           int16
	)
	err := t.tx.QueryRow(ctx, q).Scan(&programID, &admin, &server, &reg.AuthoritySeed, &bump, &authority, &rewardMnt, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("get registry: %w", err)
	}

	if reg.ProgramID, err = addressColumn(programID); err != nil {
		return nil, err
	}
	if reg.Admin, err = addressColumn(admin); err != nil {
		return nil, err
	}
	if reg.ServerWallet, err = addressColumn(server); err != nil {
		return nil, err
	}
	if reg.Authority, err = addressColumn(authority); err != nil {
		return nil, err
	}
	if rewardMnt != nil {
		if reg.RewardMint, err = addressColumn(rewardMnt); err != nil {
			return nil, err
		}
	}
	reg.AuthorityBump = uint8(bump)
	return &reg, nil
}

func (t *pgTx) InsertRegistry(ctx context.Context, reg *models.GameRegistry) error {
	q := `
		INSERT INTO game_registry (id, program_id, admin, server_wallet, authority_seed, authority_bump, authority, reward_mint, created_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := t.tx.Exec(ctx, q, registryArgs(reg)...)
	if err != nil {
		return fmt.Errorf("insert registry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrAlreadyInitialized
	}
	return nil
}

func (t *pgTx) UpdateRegistry(ctx context.Context, reg *models.GameRegistry) error {
	q := `
		UPDATE game_registry
		SET program_id = $1, admin = $2, server_wallet = $3, authority_seed = $4,
		    authority_bump = $5, authority = $6, reward_mint = $7, created_at = $8
		WHERE id = 1
	`
	tag, err := t.tx.Exec(ctx, q, registryArgs(reg)...)
	if err != nil {
		return fmt.Errorf("update registry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrNotInitialized
	}
	return nil
}

func registryArgs(reg *models.GameRegistry) []interface{} {
	var rewardMint []byte
	if !reg.RewardMint.IsZero() {
		rewardMint = reg.RewardMint.Bytes()
	}
	return []interface{}{
		reg.ProgramID.Bytes(), reg.Admin.Bytes(), reg.ServerWallet.Bytes(), reg.AuthoritySeed,
		int16(reg.AuthorityBump), reg.Authority.Bytes(), rewardMint, reg.CreatedAt,
	}
}
