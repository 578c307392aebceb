package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-sheets/internal/application/qr"
)

func newQRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Imágenes QR de los productos",
	}
	cmd.AddCommand(newQRGenerateAllCmd())
	return cmd
}

func newQRGenerateAllCmd() *cobra.Command {
	var (
		baseURL      string
		skipExisting bool
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "generate-all",
		Short: "Genera y sube el QR de cada producto del inventario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.App.BaseURL = baseURL
			}
			app, err := buildApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.ProductUC.PublishAllQR(cmd.Context(), qr.BatchOptions{SkipExisting: skipExisting, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "generados: %d  omitidos: %d  fallidos: %d\n", res.Generated, res.Skipped, res.Failed)
			for _, e := range res.Errors {
				fmt.Fprintln(out, "  -", e)
			}
			if res.Failed > 0 {
				return fmt.Errorf("%d QR no se pudieron generar", res.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base de los enlaces (por defecto BASE_URL)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "no regenerar imágenes que ya existen")
	cmd.Flags().IntVar(&limit, "limit", 0, "máximo de productos a procesar (0 = todos)")
	return cmd
}
