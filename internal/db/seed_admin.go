package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyflow/accounthub/internal/config"
	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/security"
)

// EnsureAdminUser seeds the configured admin account when it does not
// exist yet. With no seed configured it only logs a hint when the system
// has no admin at all, since every admin surface would be unreachable.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		var admins int

		err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, user.RoleAdmin).Scan(&admins)

		if err != nil {
			return err
		}

		if admins == 0 {
			log.Warn("no admin account exists; set ADMIN_EMAIL and ADMIN_PASSWORD to seed one")
		}

		return nil
	}

	// same case policy as registration: emails live lowercase
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3)`,
		email, hash, user.RoleAdmin,
	)

	if err == nil {
		log.Info("seeded admin account", "email", email)
	}

	return err
}
