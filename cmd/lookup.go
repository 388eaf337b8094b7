package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/liveable/internal/registry"
)

type flagKind int

const (
	flagString flagKind = iota
	flagInt
	flagFloat
)

// argFlag maps a command flag onto a tool argument. Only flags the user set
// are passed, so tools apply their own defaults.
type argFlag struct {
	name  string
	key   string
	kind  flagKind
	usage string
}

// toolCommand builds a subcommand that maps positional arguments and flags
// onto a registry tool and prints its envelope.
func toolCommand(use, short, tool string, positional []string, flags ...argFlag) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(len(positional)),
		RunE: func(cmd *cobra.Command, args []string) error {
			targs := registry.Args{}
			for i, key := range positional {
				targs[key] = args[i]
			}
			for _, f := range flags {
				if !cmd.Flags().Changed(f.name) {
					continue
				}
				switch f.kind {
				case flagInt:
					v, _ := cmd.Flags().GetInt(f.name)
					targs[f.key] = v
				case flagFloat:
					v, _ := cmd.Flags().GetFloat64(f.name)
					targs[f.key] = v
				default:
					v, _ := cmd.Flags().GetString(f.name)
					targs[f.key] = v
				}
			}
			return invokeTool(cmd, tool, targs)
		},
	}
	for _, f := range flags {
		switch f.kind {
		case flagInt:
			cmd.Flags().Int(f.name, 0, f.usage)
		case flagFloat:
			cmd.Flags().Float64(f.name, 0, f.usage)
		default:
			cmd.Flags().String(f.name, "", f.usage)
		}
	}
	return cmd
}

// invokeTool runs one tool and writes its envelope. An error envelope is
// printed like any other and then reported through the exit status.
func invokeTool(cmd *cobra.Command, tool string, args registry.Args) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	env := a.Tools.Invoke(ctx, tool, args)
	if err := writeOutput(cmd.OutOrStdout(), env); err != nil {
		return err
	}
	if env.IsError {
		return fmt.Errorf("%s: %s", tool, env.Kind)
	}
	return nil
}

var (
	yearFlag   = argFlag{name: "year", key: "year", kind: flagInt, usage: "data vintage (default: provider specific)"}
	radiusFlag = argFlag{name: "radius", key: "radius_meters", kind: flagInt, usage: "search radius in meters"}
)

func init() {
	rootCmd.AddCommand(
		toolCommand("geocode <zip>", "Resolve a ZIP code to city, state and coordinates",
			"geocode_zip", []string{"zip_code"}),
		toolCommand("profile <zip>", "Resolve county, tract and metro area identifiers",
			"get_geo_profile", []string{"zip_code"}),
		toolCommand("demographics <zip>", "ACS 5-year demographics, with county fallback",
			"get_census_demographics", []string{"zip_code"}),
		toolCommand("fmr <zip>", "HUD Fair Market Rents for the ZIP's county or state",
			"get_hud_fmr", []string{"zip_code"}, yearFlag),
		toolCommand("market <zip>", "RentCast market statistics",
			"get_rentcast_market", []string{"zip_code"}),
		toolCommand("listings <zip>", "RentCast sale listings",
			"get_rentcast_sale_listings", []string{"zip_code"},
			argFlag{name: "limit", key: "limit", kind: flagInt, usage: "listings requested"}),
		toolCommand("housing <zip>", "Home price and rent benchmarks",
			"search_housing_prices", []string{"zip_code"}, yearFlag),
		toolCommand("amenities <zip> <category>", "Count and rate nearby amenities",
			"search_nearby_amenities", []string{"zip_code", "category"}, radiusFlag),
		toolCommand("osm <zip> <category>", "Count nearby amenities from OpenStreetMap",
			"search_osm_amenities", []string{"zip_code", "category"}, radiusFlag),
		toolCommand("overpass <lat> <lon> <category>", "Count amenities around a coordinate",
			"search_overpass_amenities", []string{"lat", "lon", "category"}, radiusFlag),
		toolCommand("noise <zip>", "Count noise-risk proxies near a ZIP code",
			"search_noise_proxies", []string{"zip_code"}, radiusFlag),
		toolCommand("walkscore <zip>", "Walk, Transit and Bike Score for a ZIP's center",
			"get_walkscore", []string{"zip_code"}),
		toolCommand("developments <zip>", "Development and permit records",
			"search_new_developments", []string{"zip_code"},
			argFlag{name: "city", key: "city", usage: "city substituted into the permits query"}),
		toolCommand("report <zip>", "Full neighborhood report",
			"neighborhood_report", []string{"zip_code"}),
		toolCommand("compare <zip-a> <zip-b>", "Compare two neighborhoods",
			"compare_neighborhoods", []string{"zip_code_a", "zip_code_b"}),
	)
}
