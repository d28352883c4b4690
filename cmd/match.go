package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balasai14/multi-face-reg/internal/config"
	"github.com/balasai14/multi-face-reg/internal/identity"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Verify a descriptor against an enrolled identity",
	Long: `Match a facial descriptor against a stored enrollment and print a
session token when the distance is within the configured threshold.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("key", "", "Identity key to verify against (required)")
	matchCmd.Flags().String("file", "-", "Path to the descriptor JSON file, or - for stdin")
	matchCmd.Flags().Bool("dev", false, "Use a volatile in-memory store instead of a database")
}

func runMatch(cmd *cobra.Command, args []string) error {
	key := mustGetString(cmd, "key")
	if key == "" {
		return errors.New("--key is required")
	}

	raw, err := readDescriptor(mustGetString(cmd, "file"))
	if err != nil {
		return err
	}

	cfg := config.Load()
	service, closeRepo, err := buildService(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	result, err := service.Login(context.Background(), key, raw)
	switch {
	case errors.Is(err, identity.ErrUnknownIdentity):
		return fmt.Errorf("identity %q is not enrolled", key)
	case errors.Is(err, identity.ErrNoMatch):
		return errors.New("descriptor does not match the enrolled identity")
	case err != nil:
		return fmt.Errorf("matching identity: %w", err)
	}

	fmt.Printf("Matched %s (%s)\n", result.User.IdentityKey, result.User.DisplayName)
	fmt.Printf("Token: %s\n", result.Token)
	return nil
}
