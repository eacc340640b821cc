package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db"
	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/controller/subscription"
)

var (
	linkPostID uint64
	linkCode   string
	generateN  int
	terms      payment.Terms
	dumpAsJSON bool

	seedPlansCmd = &cobra.Command{
		Use:   "seed-plans",
		Short: "Install the default subscription plans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(conn *gorm.DB) error {
				return seedPlans(cmd.OutOrStdout(), conn)
			})
		},
	}

	linkPaymentCmd = &cobra.Command{
		Use:   "link-payment",
		Short: "Sponsor a post with an ad code, or with a new payment built from the terms flags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(conn *gorm.DB) error {
				return linkPayment(cmd.OutOrStdout(), conn, linkPostID, payment.LinkRequest{Code: linkCode, Terms: terms})
			})
		},
	}

	generateCodesCmd = &cobra.Command{
		Use:   "generate-codes",
		Short: "Create unused ad codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(conn *gorm.DB) error {
				return generateCodes(cmd.OutOrStdout(), conn, generateN, terms)
			})
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	configDumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration, secrets included",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dumpConfig(cmd.OutOrStdout(), &cfg, dumpAsJSON)
		},
	}
)

func init() { //nolint: gochecknoinits
	addTermsFlags := func(c *cobra.Command) {
		c.Flags().Int64Var(&terms.Amount, "amount", 0, "price in minor currency units")
		c.Flags().StringVar(&terms.Currency, "currency", "USD", "ISO 4217 currency code")
		c.Flags().IntVar(&terms.DurationDays, "days", 30, "sponsorship duration in days")
	}

	linkPaymentCmd.Flags().Uint64Var(&linkPostID, "post", 0, "id of the post to sponsor")
	linkPaymentCmd.Flags().StringVar(&linkCode, "code", "", "unused ad code; empty creates a payment from the terms flags")
	_ = linkPaymentCmd.MarkFlagRequired("post")
	addTermsFlags(linkPaymentCmd)

	generateCodesCmd.Flags().IntVarP(&generateN, "count", "n", 10, "number of codes")
	addTermsFlags(generateCodesCmd)

	configDumpCmd.Flags().BoolVar(&dumpAsJSON, "json", false, "print JSON instead of TOML")
	configCmd.AddCommand(configDumpCmd)

	rootCmd.AddCommand(seedPlansCmd, linkPaymentCmd, generateCodesCmd, configCmd)
}

func withDB(fn func(conn *gorm.DB) error) error {
	conn, err := db.Open(&cfg)
	if err != nil {
		return err
	}

	if sqlDB, errDB := conn.DB(); errDB == nil {
		defer sqlDB.Close()
	}

	return fn(conn)
}

func seedPlans(out io.Writer, conn *gorm.DB) error {
	n, err := subscription.SeedPlans(conn)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%d plan(s) created\n", n)

	return err
}

func linkPayment(out io.Writer, conn *gorm.DB, postID uint64, req payment.LinkRequest) error {
	res, err := payment.LinkPaymentToPost(conn, postID, req)
	if err != nil {
		return err
	}

	if !res.Linked {
		_, err = fmt.Fprintf(out, "post %d already has payment %s, nothing changed\n", postID, res.Payment.Code)
		return err
	}

	_, err = fmt.Fprintf(out, "post %d sponsored with %s until %s\n",
		postID, res.Payment.Code, res.Post.SponsoredUntil.Format("2006-01-02"))

	return err
}

func generateCodes(out io.Writer, conn *gorm.DB, n int, t payment.Terms) error {
	payments, err := payment.GenerateAdCodes(conn, n, t)
	if err != nil {
		return err
	}

	codes := make([]string, len(payments))
	for i, p := range payments {
		codes[i] = p.Code
	}

	_, err = fmt.Fprintln(out, strings.Join(codes, "\n"))

	return err
}

func dumpConfig(out io.Writer, c *config.Config, asJSON bool) error {
	dump := config.DumpConfig
	if asJSON {
		dump = config.DumpConfigJSON
	}

	s, err := dump(c)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, s)

	return err
}
