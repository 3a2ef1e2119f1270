package cli

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/aadeploy/internal/cli/render"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// NewPredictCmd creates the predict command
func NewPredictCmd() *cobra.Command {
	var (
		owner        string
		salt         string
		deployer     string
		bytecodeHash string
		rawArgs      []string
		nonce        uint64
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a zkSync deployment address",
		Long: `Predict the address a zkSync create2 or create deployment ends up at.

By default this predicts the account the configured factory deploys for an
owner: the account artifact's bytecode hash with the owner address as the
constructor input. Use --arg to encode other constructor arguments and --nonce
to predict a plain create instead.

Examples:
  aadeploy predict --factory 0xabc... --salt 0x01...01 --owner 0x7099...79c8
  aadeploy predict --factory 0xabc... --salt 0x01...01 --bytecode-hash 0x0100... --arg address:0x7099...79c8
  aadeploy predict --factory 0xabc... --nonce 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var params usecase.PredictAddressParams
			if deployer != "" {
				if params.Deployer, err = parseAddress("factory", deployer); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("nonce") {
				params.Nonce = &nonce
			} else {
				if params.Salt, err = parseHash32("salt", salt); err != nil {
					return err
				}
				if bytecodeHash != "" {
					if params.BytecodeHash, err = parseHash32("bytecode-hash", bytecodeHash); err != nil {
						return err
					}
				}
				for _, raw := range rawArgs {
					arg, err := parseArg(raw)
					if err != nil {
						return err
					}
					params.Args = append(params.Args, arg)
				}
				switch {
				case owner != "":
					if params.Owner, err = parseAddress("owner", owner); err != nil {
						return err
					}
				case len(params.Args) == 0:
					signer, err := app.Signers.Owner()
					if err != nil {
						return err
					}
					params.Owner = signer.Address()
				}
			}

			result, err := app.PredictAddress.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				output := map[string]any{
					"method":   result.Method,
					"address":  result.Address,
					"deployer": result.Deployer,
				}
				if result.Method == "create2" {
					output["bytecodeHash"] = result.BytecodeHash
					output["salt"] = result.Salt
					output["input"] = hexutil.Encode(result.Input)
				}
				return writeJSON(cmd.OutOrStdout(), output)
			}
			return render.NewPredictRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Account owner encoded as the constructor input (default: address of OWNER_PRIVATE_KEY)")
	cmd.Flags().StringVar(&salt, "salt", "", "32 byte create2 salt")
	cmd.Flags().StringVar(&deployer, "factory", "", "Deploying contract (default: deploy.factory_address)")
	cmd.Flags().StringVar(&bytecodeHash, "bytecode-hash", "", "Versioned bytecode hash (default: hash of the account artifact)")
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "Constructor argument as <type>:<value>, repeatable (address, bytes, bytesN, intN, uintN)")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "Predict a create deployment with this deployment nonce")

	return cmd
}

// NewHashCmd creates the hash command
func NewHashCmd() *cobra.Command {
	var hex string

	cmd := &cobra.Command{
		Use:   "hash [artifact]",
		Short: "Compute the zkSync bytecode hash of an artifact",
		Long: `Compute the versioned bytecode hash zkSync uses to identify contract code.

The artifact is looked up in the artifacts directory by contract name or as
File.sol:Name. Use --hex to hash raw bytecode instead.

Examples:
  aadeploy hash MultiUserMultisig
  aadeploy hash AAFactory.sol:AAFactory
  aadeploy hash --hex 0x0000...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.HashBytecodeParams{Hex: hex}
			if len(args) > 0 {
				params.Artifact = args[0]
			}

			result, err := app.HashBytecode.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"name":   result.Name,
					"hash":   result.Hash,
					"words":  result.Words,
					"length": result.Length,
				})
			}
			return render.NewHashRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&hex, "hex", "", "Hash this bytecode instead of an artifact")

	return cmd
}
