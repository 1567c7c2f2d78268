package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/facts"
	"github.com/rshade/adtech-emissions/internal/service"
)

func corporateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "corporate TYPE COMPANY_FILE",
		Short: "Model corporate emissions of an organization (generic, publisher or atp)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orgType, err := carbon.ParseOrganizationType(args[0])
			if err != nil {
				return err
			}
			company, err := facts.LoadCompany(args[1])
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			svc, err := opts.service(logger)
			if err != nil {
				return err
			}
			out, err := svc.ModelCompanyCorporate(company, orgType, opts.trace(logger))
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), out)
		},
	}
}

func atpCmd(opts *globalOptions) *cobra.Command {
	var corporateG, corporatePerBidRequest string

	c := &cobra.Command{
		Use:   "atp COMPANY_FILE",
		Short: "Model every ad tech platform product of a company file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var alloc carbon.CorporateAllocation
			var err error
			if alloc.EmissionsG, err = parseDecimal("corporate-emissions-g", corporateG); err != nil {
				return err
			}
			if alloc.PerBidRequest, err = parseDecimal("corporate-emissions-g-per-bid-request", corporatePerBidRequest); err != nil {
				return err
			}
			company, err := facts.LoadCompany(args[0])
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			svc, err := opts.service(logger)
			if err != nil {
				return err
			}
			products, err := svc.ModelCompanyProducts(company, alloc, opts.trace(logger))
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), map[string]any{"products": products})
		},
	}

	c.Flags().StringVar(&corporateG, "corporate-emissions-g", "",
		"monthly corporate emissions of the organization in g CO2e")
	c.Flags().StringVar(&corporatePerBidRequest, "corporate-emissions-g-per-bid-request", "",
		"corporate emissions per bid request in g CO2e")
	return c
}

func publisherCmd(opts *globalOptions) *cobra.Command {
	var (
		environment   string
		gridIntensity string
		gridRegion    string
		corporateG    string
		corporateImp  string
	)

	c := &cobra.Command{
		Use:   "publisher COMPANY_FILE",
		Short: "Model every property of a publisher company file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := carbon.ParseEnvironment(environment)
			if err != nil {
				return err
			}
			popts := service.PropertyOptions{Environment: env}
			if popts.GridIntensity, err = parseDecimal("grid-intensity", gridIntensity); err != nil {
				return err
			}
			if gridRegion != "" {
				g, ok := carbon.GridIntensity(gridRegion)
				if !ok {
					return fmt.Errorf("%w: unknown grid region %q", carbon.ErrInvalidInput, gridRegion)
				}
				popts.GridIntensity = &g
			}
			if popts.Corporate.EmissionsG, err = parseDecimal("corporate-emissions-g", corporateG); err != nil {
				return err
			}
			if popts.Corporate.PerImpression, err = parseDecimal("corporate-emissions-g-per-imp", corporateImp); err != nil {
				return err
			}

			company, err := facts.LoadCompany(args[0])
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			svc, err := opts.service(logger)
			if err != nil {
				return err
			}
			props, err := svc.ModelCompanyProperties(company, popts, opts.trace(logger))
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), map[string]any{"properties": props})
		},
	}

	f := c.Flags()
	f.StringVarP(&environment, "environment", "e", string(carbon.EnvironmentComputer), "environment to model: computer, mobile, tv")
	f.StringVarP(&gridIntensity, "grid-intensity", "g", "", "grid carbon intensity in g CO2e per kWh (default 539)")
	f.StringVar(&gridRegion, "grid-region", "", "take the grid intensity from a datacenter region")
	f.StringVar(&corporateG, "corporate-emissions-g", "", "monthly corporate emissions of the publisher in g CO2e")
	f.StringVar(&corporateImp, "corporate-emissions-g-per-imp", "", "corporate emissions per impression in g CO2e")
	c.MarkFlagsMutuallyExclusive("grid-intensity", "grid-region")
	return c
}
