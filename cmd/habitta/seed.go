package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/habitta/internal/adapter/auth"
	"github.com/neomorfeo/habitta/internal/adapter/sqlite"
	"github.com/neomorfeo/habitta/internal/config"
	"github.com/neomorfeo/habitta/internal/domain"
)

// Demo fixtures. IDs are fixed so seeding twice is a no-op.
var (
	demoUsers = []domain.User{
		{ID: "5d1f0a52-7b3e-4c1a-9f20-000000000001", Name: "Olga Owner", Email: "owner@habitta.dev", Phone: "+57 300 000 0001", Role: domain.RoleOwner},
		{ID: "5d1f0a52-7b3e-4c1a-9f20-000000000002", Name: "Rafa Renter", Email: "renter@habitta.dev", Phone: "+57 300 000 0002", Role: domain.RoleUser},
		{ID: "5d1f0a52-7b3e-4c1a-9f20-000000000003", Name: "Ada Admin", Email: "admin@habitta.dev", Role: domain.RoleAdmin},
	}
	demoProperty = domain.Property{
		ID:      "5d1f0a52-7b3e-4c1a-9f20-0000000000a1",
		OwnerID: "5d1f0a52-7b3e-4c1a-9f20-000000000001",
		Title:   "Two-bedroom flat in Laureles",
		Address: "Carrera 76 #33-10, Medellín",
		Price:   2800000,
		Images: []string{
			"https://images.habitta.dev/laureles/living.jpg",
			"https://images.habitta.dev/laureles/kitchen.jpg",
		},
	}
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a demo owner, renter, admin and property, and print their tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer store.Close()

			tokens, err := auth.NewTokens(cfg.Auth)
			if err != nil {
				return err
			}

			return seed(cmd.Context(), store, tokens, time.Now().UTC().Truncate(time.Second), cmd.OutOrStdout())
		},
	}
}

func seed(ctx context.Context, store *sqlite.Store, tokens *auth.Tokens, now time.Time, out io.Writer) error {
	for _, u := range demoUsers {
		_, err := store.Users().GetByID(ctx, u.ID)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, domain.ErrUserNotFound):
			return err
		}
		u.CreatedAt = now
		if err := store.CreateUser(ctx, u); err != nil {
			return err
		}
	}

	_, err := store.Properties().GetByID(ctx, demoProperty.ID)
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound):
		p := demoProperty
		p.CreatedAt = now
		if err := store.CreateProperty(ctx, p); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "property  %s  %s\n", demoProperty.ID, demoProperty.Title)
	for _, u := range demoUsers {
		signed, err := tokens.Mint(domain.Actor{ID: u.ID, Role: u.Role}, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-8s  %s  %s\n", u.Role, u.ID, signed)
	}
	return nil
}
