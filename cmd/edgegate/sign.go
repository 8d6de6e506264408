package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/edgegate/edgegate"
)

var signCmd = &cobra.Command{
	Use:   "sign <path>",
	Short: "Mint a signed URL for a protected path",
	Long: `Mint a time-limited signed URL for a path under a protected prefix.
The secret must match the one configured for the path's policy. Byte
ranges, when given, pin the URL to those exact Range requests.`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	signCmd.Flags().String("secret", "", "signing secret (prompted when omitted)")
	signCmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	signCmd.Flags().StringArray("range", nil, "byte range to pin, as start-end (repeatable, order is significant)")
	signCmd.Flags().String("base-url", "", "prepend a base URL to the signed path")

	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	urlPath := args[0]
	if !strings.HasPrefix(urlPath, "/") {
		return fmt.Errorf("path must be absolute: %s", urlPath)
	}

	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		prompt := promptui.Prompt{
			Label: "Signing secret",
			Mask:  '*',
		}
		entered, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("read secret: %w", err)
		}
		secret = entered
	}
	if secret == "" {
		return fmt.Errorf("secret must not be empty")
	}

	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	rangeArgs, _ := cmd.Flags().GetStringArray("range")
	ranges, err := parseRangeArgs(rangeArgs)
	if err != nil {
		return err
	}

	expiresAt := edgegate.ExpiryAfter(time.Now(), ttl)
	token := edgegate.Sign(urlPath, expiresAt, secret, ranges)

	baseURL, _ := cmd.Flags().GetString("base-url")
	baseURL = strings.TrimSuffix(baseURL, "/")

	cmd.Printf("%s%s?%s=%s\n", baseURL, urlPath, edgegate.SignQueryParam, token)
	cmd.Printf("expires: %s\n", time.Unix(int64(expiresAt), 0).UTC().Format(time.RFC3339))

	return nil
}

// parseRangeArgs parses start-end pairs from the CLI into byte ranges,
// preserving the order they were given in.
func parseRangeArgs(args []string) ([]edgegate.ByteRange, error) {
	var ranges []edgegate.ByteRange
	for _, arg := range args {
		startStr, endStr, found := strings.Cut(arg, "-")
		if !found {
			return nil, fmt.Errorf("invalid range %q: expected start-end", arg)
		}

		start, err := strconv.ParseUint(startStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q: %w", arg, err)
		}
		end, err := strconv.ParseUint(endStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %w", arg, err)
		}

		ranges = append(ranges, edgegate.ByteRange{Start: uint32(start), End: uint32(end)})
	}
	return ranges, nil
}
