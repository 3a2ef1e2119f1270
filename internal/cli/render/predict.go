package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// PredictRenderer prints a predicted address and the inputs it came from
type PredictRenderer struct {
	out io.Writer
}

// NewPredictRenderer creates a new predict renderer
func NewPredictRenderer(out io.Writer) *PredictRenderer {
	return &PredictRenderer{out: out}
}

func (r *PredictRenderer) Render(result *usecase.PredictAddressResult) error {
	fmt.Fprintf(r.out, "%s\n\n", addressStyle.Sprint(result.Address.Hex()))
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-15s", "Method:"), result.Method)
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-15s", "Deployer:"), result.Deployer.Hex())
	if result.Method == "create2" {
		fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-15s", "Bytecode hash:"), result.BytecodeHash.Hex())
		fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-15s", "Salt:"), result.Salt.Hex())
		fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-15s", "Input:"), hexutil.Encode(result.Input))
	}
	return nil
}

// HashRenderer prints a bytecode hash
type HashRenderer struct {
	out io.Writer
}

// NewHashRenderer creates a new hash renderer
func NewHashRenderer(out io.Writer) *HashRenderer {
	return &HashRenderer{out: out}
}

func (r *HashRenderer) Render(result *usecase.HashBytecodeResult) error {
	fmt.Fprintln(r.out, addressStyle.Sprint(result.Hash.Hex()))
	name := result.Name
	if name == "" {
		name = "bytecode"
	}
	labelStyle.Fprintf(r.out, "%s: %d bytes, %d words\n", name, result.Length, result.Words)
	return nil
}

var (
	_ Renderer[*usecase.PredictAddressResult] = (*PredictRenderer)(nil)
	_ Renderer[*usecase.HashBytecodeResult]   = (*HashRenderer)(nil)
)
