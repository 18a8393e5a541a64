package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/geofence"
	"github.com/kozaktomas/face-attendance/internal/identity"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Inspect and configure geofence zones",
}

var zonesGetCmd = &cobra.Command{
	Use:   "get <code>",
	Short: "Show the zones configured for an identity code",
	Args:  cobra.ExactArgs(1),
	RunE:  runZonesGet,
}

var zonesSetCmd = &cobra.Command{
	Use:   "set <code>",
	Short: "Replace the zones for an identity code",
	Long: `Replace the zone list for an identity code. Each zone is a
lat,lng,radius_m triple.

Examples:
  # One 200 m zone
  face-attendance zones set alice --zone 14.0404,100.7337,200

  # Two zones, first match wins during evaluation
  face-attendance zones set alice --zone 14.0404,100.7337,200 --zone 13.75,100.50,150`,
	Args: cobra.ExactArgs(1),
	RunE: runZonesSet,
}

func init() {
	rootCmd.AddCommand(zonesCmd)
	zonesCmd.AddCommand(zonesGetCmd)
	zonesCmd.AddCommand(zonesSetCmd)

	zonesGetCmd.Flags().Bool("json", false, "Output as JSON")
	zonesSetCmd.Flags().StringSlice("zone", nil, "Zone as lat,lng,radius_m (repeatable)")
}

func openRegistry(cfg *config.Config) (*geofence.Registry, error) {
	registry, err := geofence.NewRegistry(cfg.Store.SitesPath, cfg.Recognition.MaxAccuracyM, config.DefaultZones())
	if err != nil {
		return nil, fmt.Errorf("loading geofence zones: %w", err)
	}
	return registry, nil
}

// parseZoneTriple parses a "lat,lng,radius_m" string.
func parseZoneTriple(s string) (geofence.Zone, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geofence.Zone{}, fmt.Errorf("zone %q: expected lat,lng,radius_m", s)
	}

	vals := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geofence.Zone{}, fmt.Errorf("zone %q: %w", s, err)
		}
		vals[i] = v
	}

	zone := geofence.Zone{Lat: vals[0], Lng: vals[1], RadiusM: vals[2]}
	if err := zone.Validate(); err != nil {
		return geofence.Zone{}, fmt.Errorf("zone %q: %w", s, err)
	}
	return zone, nil
}

// ZonesResult represents the zones configured for a code
type ZonesResult struct {
	Code  string       `json:"code"`
	Zones [][3]float64 `json:"zones"`
}

func runZonesGet(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	code := identity.NormalizeCode(args[0])
	if code == "" {
		return fmt.Errorf("identity code must not be empty")
	}

	registry, err := openRegistry(config.Load())
	if err != nil {
		return err
	}

	zones := registry.Zones(code)
	if jsonOutput {
		triples := make([][3]float64, 0, len(zones))
		for _, z := range zones {
			triples = append(triples, [3]float64{z.Lat, z.Lng, z.RadiusM})
		}
		return outputJSON(ZonesResult{Code: code, Zones: triples})
	}

	if len(zones) == 0 {
		fmt.Printf("No zones configured for %s.\n", code)
		return nil
	}
	fmt.Printf("Zones for %s:\n", code)
	for _, z := range zones {
		fmt.Printf("  %.6f, %.6f  radius %.1f m\n", z.Lat, z.Lng, z.RadiusM)
	}
	return nil
}

func runZonesSet(cmd *cobra.Command, args []string) error {
	zoneArgs := mustGetStringSlice(cmd, "zone")
	if len(zoneArgs) == 0 {
		return fmt.Errorf("at least one --zone is required")
	}

	code := identity.NormalizeCode(args[0])
	if code == "" {
		return fmt.Errorf("identity code must not be empty")
	}

	zones := make([]geofence.Zone, 0, len(zoneArgs))
	for _, arg := range zoneArgs {
		zone, err := parseZoneTriple(arg)
		if err != nil {
			return err
		}
		zones = append(zones, zone)
	}

	registry, err := openRegistry(config.Load())
	if err != nil {
		return err
	}
	if err := registry.SetZones(code, zones); err != nil {
		return fmt.Errorf("saving zones: %w", err)
	}

	fmt.Printf("Configured %d zones for %s.\n", len(zones), code)
	return nil
}
