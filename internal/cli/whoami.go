package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gitnostr/internal/keys"
)

// Identity is the public side of the configured key.
type Identity struct {
	PublicKey string `json:"pubkey"`
	NPub      string `json:"npub"`
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the public key events are signed with",
		Long: `Print the public key of the configured secret key, as hex and npub.

Examples:
  GITNOSTR_SECRET_KEY=nsec1... gitnostr whoami`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(rootOpts, cmd)
		},
	}
}

func runWhoami(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)
	cfg, logger, err := loadConfig(opts, cmd, out)
	if err != nil {
		return err
	}

	// signer only reads cfg and out
	a := &app{cfg: cfg, logger: logger, out: out}
	signer, err := a.signer()
	if err != nil {
		return err
	}

	id := Identity{PublicKey: signer.PublicKey()}
	id.NPub, err = keys.NPub(id.PublicKey)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeNoKey, "failed to encode public key", err)
	}

	if out.Format == "json" {
		return out.Success(id)
	}
	fmt.Fprintln(out.Writer, id.NPub)
	fmt.Fprintln(out.Writer, id.PublicKey)
	return nil
}
