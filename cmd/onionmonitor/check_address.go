package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/nao1215/onionmonitor/internal/tor"
	"github.com/spf13/cobra"
)

// lexicalReasons are the address checks reported one by one.
var lexicalReasons = []error{
	model.ErrMissingOnionSuffix,
	model.ErrInvalidAddressLength,
	model.ErrInvalidAddressAlphabet,
}

// NewCheckAddressCmd creates the check-address command.
func NewCheckAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-address [address...]",
		Short: "Validate v3 onion addresses",
		Long: `Validate onion addresses: the ".onion" suffix, a 56 character address
part and the lower-case base32 alphabet. No normalisation is applied, so
upper-case input, schemes and subdomains are invalid.

With --strict the address is also decoded and its version byte and
SHA3-256 checksum are verified. With --key-file the address derived from a
hs_ed25519_public_key file is reported and every given address must match it.

Exits with status 1 when any address is invalid.

Examples:
  onionmonitor check-address 2gzyxa5ihm7nsggfxnu52rck2vv4rvmdlkiu3zzui5du4xyclen53wid.onion
  onionmonitor check-address --strict $(cat hostname)
  onionmonitor check-address --key-file /var/lib/tor/hs/hs_ed25519_public_key`,
		RunE: runCheckAddressCmd,
	}

	cmd.Flags().Bool("strict", false, "Verify the version byte and checksum")
	cmd.Flags().String("key-file", "", "hs_ed25519_public_key file the addresses must belong to")
	addReportFlags(cmd)

	return cmd
}

func runCheckAddressCmd(cmd *cobra.Command, args []string) error {
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return err
	}
	keyFile, err := cmd.Flags().GetString("key-file")
	if err != nil {
		return err
	}
	if len(args) == 0 && keyFile == "" {
		return errors.New("requires at least one address or --key-file")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	checks := make([]report.AddressCheck, 0, len(args)+1)
	var fromKey string
	if keyFile != "" {
		if fromKey, err = tor.AddressFromKeyFile(keyFile); err != nil {
			return err
		}
		logger.Debug("derived address from key file", "file", keyFile, "address", fromKey)
		checks = append(checks, checkAddress(fromKey, true))
	}
	for _, addr := range args {
		c := checkAddress(addr, strict)
		if fromKey != "" && addr != fromKey {
			c.Valid = false
			c.Reasons = append(c.Reasons, "does not match key file "+keyFile)
		}
		checks = append(checks, c)
	}

	if err := outputReport(cmd, cfg, func(w report.Writer) error {
		return w.WriteAddresses(checks)
	}); err != nil {
		return err
	}

	invalid := 0
	for _, c := range checks {
		if !c.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d address(es) invalid", model.ErrMalformedAddress, invalid, len(checks))
	}
	return nil
}

// checkAddress runs the lexical checks and, when strict, the checksum check.
func checkAddress(addr string, strict bool) report.AddressCheck {
	c := report.AddressCheck{Input: addr, Valid: true}

	if err := model.ValidateOnionAddress(addr); err != nil {
		c.Valid = false
		for _, reason := range lexicalReasons {
			if errors.Is(err, reason) {
				c.Reasons = append(c.Reasons, reason.Error())
			}
		}
		if tor.IsV2Address(addr) {
			c.Reasons = append(c.Reasons, tor.ErrV2AddressDeprecated.Error())
		}
		return c
	}

	if !strict {
		return c
	}
	switch err := tor.VerifyV3Address(addr); {
	case err == nil:
		c.Checksum = "ok"
	case errors.Is(err, tor.ErrChecksumMismatch):
		c.Valid = false
		c.Checksum = "mismatch"
		c.Reasons = append(c.Reasons, tor.ErrChecksumMismatch.Error())
	default:
		c.Valid = false
		c.Reasons = append(c.Reasons, err.Error())
	}
	return c
}
