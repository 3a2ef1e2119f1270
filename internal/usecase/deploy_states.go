package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/aadeploy/internal/domain"
	"github.com/trebuchet-org/aadeploy/internal/domain/models"
	"github.com/trebuchet-org/aadeploy/pkg/zksync"
)

// deployFactory deploys the factory through the ContractDeployer with the
// account bytecode hash as constructor argument, or adopts a configured one.
func (uc *DeployAccount) deployFactory(ctx context.Context, s *session, d *models.AccountDeployment) error {
	if d.FactoryAddress != (common.Address{}) {
		code, err := uc.network.CodeAt(ctx, d.FactoryAddress)
		if err != nil {
			return fmt.Errorf("failed to read factory code: %w", err)
		}
		if len(code) == 0 {
			return fmt.Errorf("%w: no contract at factory address %s", domain.ErrInputValidation, d.FactoryAddress.Hex())
		}
		uc.log.Info("using existing factory", "address", d.FactoryAddress)
		return nil
	}

	ctorArgs, err := zksync.EncodeArgs(zksync.Bytes32Arg(s.accountHash))
	if err != nil {
		return err
	}
	expected, err := zksync.Create2Address(s.deployer.Address(), s.factoryHash.Bytes(), d.FactorySalt.Bytes(), ctorArgs)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}

	if _, submitted := d.TxFor(d.State); !submitted {
		deployed, err := uc.hasCode(ctx, expected)
		if err != nil {
			return err
		}
		if deployed {
			uc.log.Info("factory already deployed", "address", expected)
			d.FactoryAddress = expected
			return nil
		}
	}

	data, err := zksync.EncodeCreate2(d.FactorySalt, s.factoryHash, ctorArgs)
	if err != nil {
		return err
	}
	receipt, err := uc.submitOrAwait(ctx, d, func() ([]byte, error) {
		return uc.deployerTransaction(ctx, s, zksync.ContractDeployerAddress, data, [][]byte{s.factoryCode, s.accountCode})
	})
	if err != nil {
		return err
	}

	actual, err := deployedBy(receipt, s.deployer.Address())
	if err != nil {
		return err
	}
	if actual != expected {
		return &domain.DerivationMismatchError{What: "factory", Expected: expected, Actual: actual}
	}
	d.FactoryAddress = actual
	uc.log.Info("factory deployed", "address", actual, "tx", receipt.TxHash)
	return nil
}

// deriveAccount reads the account bytecode hash the factory deploys with and
// derives the account address off-chain.
func (uc *DeployAccount) deriveAccount(ctx context.Context, s *session, d *models.AccountDeployment) error {
	call, err := zksync.EncodeAABytecodeHash()
	if err != nil {
		return err
	}
	out, err := uc.network.Call(ctx, CallRequest{To: d.FactoryAddress, Data: call})
	if err != nil {
		return fmt.Errorf("failed to read aaBytecodeHash: %w", err)
	}
	hash, err := zksync.DecodeAABytecodeHash(out)
	if err != nil {
		return err
	}
	if hash != s.accountHash {
		uc.log.Warn("factory deploys a different account bytecode than the local artifact",
			"factory", hash, "artifact", s.accountHash)
	}

	addr, err := accountAddress(d.FactoryAddress, hash, d.Salt, d.Owner)
	if err != nil {
		return err
	}
	d.AccountBytecodeHash = hash
	d.AccountAddress = addr
	uc.log.Info("account address derived", "address", addr, "salt", d.Salt)
	return nil
}

// deployAccount calls deployAccount on the factory and checks the account
// landed on the derived address.
func (uc *DeployAccount) deployAccount(ctx context.Context, s *session, d *models.AccountDeployment) error {
	if _, submitted := d.TxFor(d.State); !submitted {
		deployed, err := uc.hasCode(ctx, d.AccountAddress)
		if err != nil {
			return err
		}
		if deployed {
			uc.log.Info("account already deployed", "address", d.AccountAddress)
			return nil
		}
	}

	data, err := zksync.EncodeDeployAccount(d.Salt, d.Owner)
	if err != nil {
		return err
	}
	receipt, err := uc.submitOrAwait(ctx, d, func() ([]byte, error) {
		return uc.deployerTransaction(ctx, s, d.FactoryAddress, data, nil)
	})
	if err != nil {
		return err
	}

	actual, err := deployedBy(receipt, d.FactoryAddress)
	if err != nil {
		return err
	}
	if actual != d.AccountAddress {
		return &domain.DerivationMismatchError{What: "account", Expected: d.AccountAddress, Actual: actual}
	}
	uc.log.Info("account deployed", "address", actual, "tx", receipt.TxHash)
	return nil
}

func (uc *DeployAccount) snapshotBalance(ctx context.Context, d *models.AccountDeployment) error {
	balance, err := uc.network.BalanceAt(ctx, d.AccountAddress)
	if err != nil {
		return fmt.Errorf("failed to read account balance: %w", err)
	}
	d.BalanceBefore = balance
	return nil
}

// fundAccount transfers the funding amount with a plain EIP-1559 transaction
// and checks the balance grew by exactly that amount.
func (uc *DeployAccount) fundAccount(ctx context.Context, s *session, d *models.AccountDeployment) error {
	if d.BalanceBefore == nil {
		return fmt.Errorf("%w: no balance snapshot before funding", domain.ErrStateMismatch)
	}

	receipt, err := uc.submitOrAwait(ctx, d, func() ([]byte, error) {
		return uc.fundingTransaction(ctx, s, d)
	})
	if err != nil {
		return err
	}

	balance, err := uc.network.BalanceAt(ctx, d.AccountAddress)
	if err != nil {
		return fmt.Errorf("failed to read account balance: %w", err)
	}
	d.BalanceAfter = balance

	expected := new(big.Int).Add(d.BalanceBefore, d.FundingAmount)
	if balance.Cmp(expected) != 0 {
		return &domain.StateMismatchError{What: "account balance after funding", Expected: expected.String(), Actual: balance.String()}
	}
	uc.log.Info("account funded", "address", d.AccountAddress, "balance", balance, "tx", receipt.TxHash)
	return nil
}

func (uc *DeployAccount) snapshotNonce(ctx context.Context, d *models.AccountDeployment) error {
	nonce, err := uc.network.NonceAt(ctx, d.AccountAddress)
	if err != nil {
		return fmt.Errorf("failed to read account nonce: %w", err)
	}
	d.NonceBefore = &nonce
	return nil
}

// sendSelfTransaction has the account deploy a second account through the
// factory. The transaction is sent from the account itself and authorized
// by the owner signature in the custom signature slot.
func (uc *DeployAccount) sendSelfTransaction(ctx context.Context, s *session, d *models.AccountDeployment) error {
	if d.NonceBefore == nil {
		return fmt.Errorf("%w: no nonce snapshot before the account transaction", domain.ErrStateMismatch)
	}

	data, err := zksync.EncodeDeployAccount(d.SelfTxSalt, d.Owner)
	if err != nil {
		return err
	}
	child, err := accountAddress(d.FactoryAddress, d.AccountBytecodeHash, d.SelfTxSalt, d.Owner)
	if err != nil {
		return err
	}

	receipt, err := uc.submitOrAwait(ctx, d, func() ([]byte, error) {
		tx, err := uc.estimate(ctx, s, zksync.CallIntent{
			From: d.AccountAddress,
			To:   d.FactoryAddress,
			Data: data,
			Meta: zksync.Meta{GasPerPubdata: s.gasPerPubdata},
		})
		if err != nil {
			return nil, err
		}
		signed, err := zksync.SignAccountTransaction(tx, s.owner)
		if err != nil {
			return nil, err
		}
		return signed.MarshalBinary()
	})
	if err != nil {
		return err
	}

	nonce, err := uc.network.NonceAt(ctx, d.AccountAddress)
	if err != nil {
		return fmt.Errorf("failed to read account nonce: %w", err)
	}
	d.NonceAfter = &nonce
	if nonce != *d.NonceBefore+1 {
		return &domain.StateMismatchError{
			What:     "account nonce after its transaction",
			Expected: fmt.Sprint(*d.NonceBefore + 1),
			Actual:   fmt.Sprint(nonce),
		}
	}

	actual, err := deployedBy(receipt, d.FactoryAddress)
	if err != nil {
		return err
	}
	if actual != child {
		return &domain.DerivationMismatchError{What: "child account", Expected: child, Actual: actual}
	}
	d.ChildAccountAddress = child
	uc.log.Info("account transaction confirmed", "account", d.AccountAddress, "nonce", nonce, "child", child, "tx", receipt.TxHash)
	return nil
}

// submitOrAwait sends the transaction built by build, records its hash for
// the current state and waits for it. A hash recorded by an earlier run is
// awaited instead of submitting again.
func (uc *DeployAccount) submitOrAwait(ctx context.Context, d *models.AccountDeployment, build func() ([]byte, error)) (*models.Receipt, error) {
	state := d.State
	hash, submitted := d.TxFor(state)
	if !submitted {
		raw, err := build()
		if err != nil {
			return nil, err
		}
		hash, err = uc.network.SendRawTransaction(ctx, raw)
		if err != nil {
			return nil, err
		}
		d.RecordTx(state, hash)
		d.UpdatedAt = uc.now()
		if err := uc.store.Save(ctx, d); err != nil {
			return nil, fmt.Errorf("failed to save deployment: %w", err)
		}
		uc.log.Info("transaction submitted", "state", state, "tx", hash)
	} else {
		uc.log.Info("awaiting transaction from previous run", "state", state, "tx", hash)
	}

	receipt, err := uc.network.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !receipt.Succeeded() {
		// a later run submits a fresh transaction
		d.ForgetTx(state)
		return nil, &domain.NetworkRejectionError{TxHash: hash, Reason: "transaction reverted"}
	}
	return receipt, nil
}

// deployerTransaction builds and signs an EIP-712 transaction from the deployer.
func (uc *DeployAccount) deployerTransaction(ctx context.Context, s *session, to common.Address, data []byte, deps [][]byte) ([]byte, error) {
	tx, err := uc.estimate(ctx, s, zksync.CallIntent{
		From: s.deployer.Address(),
		To:   to,
		Data: data,
		Meta: zksync.Meta{GasPerPubdata: s.gasPerPubdata, FactoryDeps: deps},
	})
	if err != nil {
		return nil, err
	}
	signed, err := zksync.SignTransaction(tx, s.deployer)
	if err != nil {
		return nil, err
	}
	return signed.MarshalBinary()
}

// estimate fills gas, fees, nonce and chain id for an intent.
func (uc *DeployAccount) estimate(ctx context.Context, s *session, intent zksync.CallIntent) (*zksync.Transaction712, error) {
	meta := intent.Meta
	gas, err := uc.network.EstimateGas(ctx, CallRequest{
		From:  intent.From,
		To:    intent.To,
		Value: intent.Value,
		Data:  intent.Data,
		Meta:  &meta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	price, err := uc.network.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	nonce, err := uc.network.NonceAt(ctx, intent.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	return zksync.NewTransaction(intent).Estimate(zksync.Estimate{
		GasLimit: gas,
		GasPrice: price,
		Nonce:    nonce,
		ChainID:  s.chainID,
	}), nil
}

// fundingTransaction builds a signed EIP-1559 value transfer to the account
// after checking the deployer can cover value plus the gas cap.
func (uc *DeployAccount) fundingTransaction(ctx context.Context, s *session, d *models.AccountDeployment) ([]byte, error) {
	from := s.deployer.Address()
	gas, err := uc.network.EstimateGas(ctx, CallRequest{From: from, To: d.AccountAddress, Value: d.FundingAmount})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	price, err := uc.network.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	nonce, err := uc.network.NonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	balance, err := uc.network.BalanceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployer balance: %w", err)
	}
	if err := checkFunds(balance, d.FundingAmount, gas, price); err != nil {
		return nil, err
	}

	to := d.AccountAddress
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: price,
		GasFeeCap: price,
		Gas:       gas,
		To:        &to,
		Value:     d.FundingAmount,
	})
	signer := types.LatestSignerForChainID(s.chainID)
	sig, err := s.deployer.SignDigest(signer.Hash(tx))
	if err != nil {
		return nil, err
	}
	signed, err := tx.WithSignature(signer, sig[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}
	return signed.MarshalBinary()
}

// checkFunds requires balance >= amount + gas*price, in 256-bit arithmetic.
func checkFunds(balance, amount *big.Int, gas uint64, price *big.Int) error {
	bal, overflow := uint256.FromBig(balance)
	if overflow {
		return nil
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("%w: funding amount exceeds 256 bits", domain.ErrInputValidation)
	}
	gasPrice, overflow := uint256.FromBig(price)
	if overflow {
		return fmt.Errorf("%w: gas price exceeds 256 bits", domain.ErrNetworkRejection)
	}

	fee, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(gas), gasPrice)
	if overflow {
		return fmt.Errorf("%w: gas cost overflows", domain.ErrInsufficientFunds)
	}
	total, overflow := new(uint256.Int).AddOverflow(fee, value)
	if overflow || bal.Lt(total) {
		return fmt.Errorf("%w: deployer has %s wei, transfer needs %s", domain.ErrInsufficientFunds, bal.Dec(), total.Dec())
	}
	return nil
}

func (uc *DeployAccount) hasCode(ctx context.Context, addr common.Address) (bool, error) {
	code, err := uc.network.CodeAt(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("failed to read code at %s: %w", addr.Hex(), err)
	}
	return len(code) > 0, nil
}

// accountAddress derives the address the factory deploys an account to.
func accountAddress(factory common.Address, accountHash, salt common.Hash, owner common.Address) (common.Address, error) {
	input, err := zksync.EncodeArgs(zksync.AddressArg(owner))
	if err != nil {
		return common.Address{}, err
	}
	addr, err := zksync.Create2Address(factory, accountHash.Bytes(), salt.Bytes(), input)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", domain.ErrInputValidation, err)
	}
	return addr, nil
}

func deployedBy(receipt *models.Receipt, deployer common.Address) (common.Address, error) {
	ev, ok := zksync.FindContractDeployed(receipt.Logs, deployer)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: transaction %s has no ContractDeployed event from %s",
			domain.ErrDerivationMismatch, receipt.TxHash.Hex(), deployer.Hex())
	}
	return ev.Contract, nil
}
