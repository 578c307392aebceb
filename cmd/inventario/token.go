package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-sheets/internal/infrastructure/google"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token OAuth de Google",
	}
	cmd.AddCommand(newTokenRefreshCmd(), newTokenStatusCmd())
	return cmd
}

func loadToken() (google.Loaded, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return google.Loaded{}, err
	}
	return google.Load(google.Source{JSON: cfg.Google.TokenJSON, Files: cfg.Google.TokenFiles})
}

func newTokenRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Pide un access token nuevo y lo guarda en el archivo de origen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadToken()
			if err != nil {
				return err
			}
			if loaded.Path == "" {
				return errors.New("el token viene de GOOGLE_TOKEN_JSON; actualice la variable a mano")
			}
			next, err := google.Refresh(cmd.Context(), loaded.Data)
			if err != nil {
				return err
			}
			if err := loaded.Persist(next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token refrescado en %s (vence %s)\n", loaded.Origin, expiry(next))
			return nil
		},
	}
}

func newTokenStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Muestra origen y vencimiento del token (nunca su contenido)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadToken()
			if err != nil {
				return err
			}
			state := "vigente"
			if loaded.Data.Expired(time.Now()) {
				state = "vencido"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "origen: %s\nvence: %s (%s)\n", loaded.Origin, expiry(loaded.Data), state)
			return nil
		},
	}
}

func expiry(td google.TokenData) string {
	if td.Expiry == nil {
		return "sin fecha"
	}
	return td.Expiry.Format(time.RFC3339)
}
