package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prqueue/internal/vault"
)

func newVaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage the encrypted Slack identity store",
		Long: `The identity store maps GitHub logins to Slack user IDs. Values are
stored encrypted so the linkage is never persisted in plaintext; the queue
command decrypts it in memory using the SLACK_NICKS_KEY environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newVaultKeygenCmd())
	cmd.AddCommand(newVaultEncryptCmd())
	cmd.AddCommand(newVaultDecryptCmd())

	return cmd
}

func newVaultKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new encryption key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := vault.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Println("SECRET KEY - DO NOT SHARE!")
			fmt.Printf("export SLACK_NICKS_KEY=%s\n", key)
			return nil
		},
	}
}

func newVaultEncryptCmd() *cobra.Command {
	var inFile, outFile string

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a plaintext identity mapping file",
		Long: `Read a YAML mapping of GitHub login to Slack user ID and write the
same mapping with every value encrypted under SLACK_NICKS_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("SLACK_NICKS_KEY")
			if key == "" {
				return fmt.Errorf("SLACK_NICKS_KEY is not set")
			}

			mapping, err := vault.ReadPlainFile(inFile)
			if err != nil {
				return err
			}

			encrypted, err := vault.Encrypt(mapping, key)
			if err != nil {
				return err
			}

			if err := vault.WriteMappingFile(outFile, encrypted); err != nil {
				return err
			}

			fmt.Printf("✓ Encryption complete. Encrypted YAML file saved at: %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "slack_nicks.yaml", "Plaintext mapping file")
	cmd.Flags().StringVar(&outFile, "out", "slack_nicks_encrypted.yaml", "Encrypted output file")

	return cmd
}

func newVaultDecryptCmd() *cobra.Command {
	var inFile, outFile string

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an encrypted identity mapping file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("SLACK_NICKS_KEY")
			if key == "" {
				return fmt.Errorf("SLACK_NICKS_KEY is not set")
			}

			mapping, err := vault.ReadPlainFile(inFile)
			if err != nil {
				return err
			}

			entries, err := vault.Decrypt(mapping, key)
			if err != nil {
				return err
			}

			decrypted := make(map[string]string, len(entries))
			for _, e := range entries {
				decrypted[e.Login] = e.PrivateID
			}

			if err := vault.WriteMappingFile(outFile, decrypted); err != nil {
				return err
			}

			fmt.Printf("✓ Decryption complete. Decrypted YAML file saved at: %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "slack_nicks_encrypted.yaml", "Encrypted mapping file")
	cmd.Flags().StringVar(&outFile, "out", "slack_nicks.yaml", "Plaintext output file")

	return cmd
}
