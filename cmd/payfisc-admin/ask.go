package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/classifier"
	"github.com/payfisc/payfisc-admin/internal/loaders"
	"github.com/payfisc/payfisc-admin/internal/services"
)

func newAskCmd() *cobra.Command {
	var (
		fetch bool
		site  int
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Classe une question et, avec --fetch, interroge le backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if !fetch {
				return enc.Encode(classifier.Analyse(question))
			}

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.log.Sync() //nolint:errcheck
			api, err := newAPIClient(e)
			if err != nil {
				return err
			}
			ctx := i18n.WithLang(cmd.Context(), i18n.DefaultLang)
			return enc.Encode(loaders.Answer(ctx, e.log, services.NewCatalog(api), question, site))
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "charger les données de la catégorie détectée")
	cmd.Flags().IntVar(&site, "site", 0, "restreindre au site")
	return cmd
}

func newAPIClient(e *env, opts ...apiclient.Option) (*apiclient.Client, error) {
	c := e.cfg.API
	opts = append([]apiclient.Option{apiclient.WithLogger(e.log)}, opts...)
	return apiclient.New(apiclient.Config{
		BaseURL:            c.BaseURL,
		Timeout:            c.Timeout,
		IncludeCredentials: c.IncludeCredentials(),
		UserAgent:          c.UserAgent,
		RateLimit:          c.RateLimit,
		RateBurst:          c.RateBurst,
	}, opts...)
}
