package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-sheets/internal/application/auth"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [contraseña]",
		Short: "Imprime el hash bcrypt para la columna de contraseña de la hoja de usuarios",
		Long:  "Sin argumento lee la contraseña de la primera línea de la entrada estándar.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("contraseña vacía")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("contraseña vacía")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
