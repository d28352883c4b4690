package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/balasai14/multi-face-reg/internal/auth"
	"github.com/balasai14/multi-face-reg/internal/config"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
	"github.com/balasai14/multi-face-reg/internal/identity"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll an identity from a descriptor file",
	Long: `Enroll a new identity using a facial descriptor vector.
The descriptor is a JSON array of 128 floats, read from a file or from
stdin when --file is "-".`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("key", "", "Unique identity key (required)")
	enrollCmd.Flags().String("name", "", "Display name (required)")
	enrollCmd.Flags().String("file", "-", "Path to the descriptor JSON file, or - for stdin")
	enrollCmd.Flags().Bool("dev", false, "Use a volatile in-memory store instead of a database")
}

// readDescriptor loads the raw descriptor JSON from a file or stdin.
func readDescriptor(path string) (json.RawMessage, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading descriptor from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor file: %w", err)
	}
	return data, nil
}

// buildService wires an identity service against the configured backend.
func buildService(cmd *cobra.Command, cfg *config.Config) (*identity.Service, func() error, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, nil, errors.New("JWT_SECRET environment variable is required")
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring token issuer: %w", err)
	}

	repo, closeRepo, err := openRepository(cfg, mustGetBool(cmd, "dev"))
	if err != nil {
		return nil, nil, err
	}

	validator := descriptor.NewValidator(cfg.Matching.DescriptorDim, cfg.Matching.ValueBound)
	matcher := descriptor.NewMatcher(cfg.Matching.Threshold)
	return identity.NewService(repo, validator, matcher, issuer), closeRepo, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	key := mustGetString(cmd, "key")
	name := mustGetString(cmd, "name")
	if key == "" || name == "" {
		return errors.New("--key and --name are required")
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

	record, err := service.Enroll(context.Background(), key, name, raw)
	if err != nil {
		return fmt.Errorf("enrolling identity: %w", err)
	}

	fmt.Printf("Enrolled %s (%s)\n", record.IdentityKey, record.DisplayName)
	return nil
}
