// cmd/tenderec/company.go
package main

import (
	"io"
	"strings"

	apperrors "tenderec/internal/common/errors"
	"tenderec/internal/models"

	"github.com/spf13/cobra"
)

func companyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Show or create the company profile recommendations are built for",
	}
	cmd.AddCommand(companyGetCmd(c))
	cmd.AddCommand(companyCreateCmd(c))
	return cmd
}

func companyGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get [name]",
		Short: "Show a company profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			name := c.companyName()
			if len(args) == 1 {
				name = args[0]
			}

			profile, err := a.service.Company(cmd.Context(), name)
			if apperrors.IsNotFound(err) {
				a.printf("Company %q has no profile yet.\n", name)
				a.printf("Create one with: tenderec company create %q --description \"what the company does\"\n", name)
			}
			if err != nil {
				return a.report("company", err)
			}
			if a.jsonOut {
				return a.printJSON(profile)
			}
			printCompany(a, profile)
			return nil
		},
	}
}

func companyCreateCmd(c *cli) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Build a company profile from a free-text description",
		Long: `Build a company profile from a free-text description.

Examples:
  tenderec company create greenworks -d "We design and maintain urban parks"
  cat about.txt | tenderec company create greenworks -d -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			name := c.companyName()
			if len(args) == 1 {
				name = args[0]
			}
			if description == "-" {
				data, err := io.ReadAll(a.in)
				if err != nil {
					return err
				}
				description = string(data)
			}
			if strings.TrimSpace(description) == "" {
				return cmd.Usage()
			}

			profile, err := a.service.CreateCompany(cmd.Context(), name, description)
			if err != nil {
				return a.report("company", err)
			}
			if a.jsonOut {
				return a.printJSON(profile)
			}
			a.printf("Profile created.\n\n")
			printCompany(a, profile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "company description, or - to read stdin")
	return cmd
}

func printCompany(a *app, p *models.CompanyProfile) {
	info := p.Profile.CompanyInfo
	criteria := p.Profile.MatchingCriteria

	a.printf("%s\n", p.CompanyName)
	if info.Name != "" && info.Name != p.CompanyName {
		a.printf("  Name:               %s\n", info.Name)
	}
	a.printf("  Industries:         %s\n", joinOrDash(info.Industries))
	a.printf("  Service categories: %s\n", joinOrDash(criteria.ServiceCategories))
	a.printf("  CPV codes:          %s\n", joinOrDash(criteria.CPVCodes))
	a.printf("  Target authorities: %s\n", joinOrDash(criteria.TargetAuthorities))
	if criteria.Geography.PrimaryCountry != "" {
		a.printf("  Country:            %s\n", criteria.Geography.PrimaryCountry)
	}
	if p.CreatedAt != "" {
		a.printf("  Created:            %s\n", p.CreatedAt)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
