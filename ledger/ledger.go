// Package ledger models custody: who holds how much of which asset, and the
// transfers an operation wants applied. Transfers are validated together and
// either all apply or none do.
package ledger

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInsufficientQuote  = errors.New("insufficient quote balance")
	ErrInsufficientTokens = errors.New("insufficient token balance")
	ErrUnauthorized       = errors.New("transfer authority does not own the source account")
	ErrOverflow           = errors.New("balance overflow")
)

// NativeQuote is the mint of the native quote currency.
var NativeQuote = solana.PublicKey{}

// Account identifies a balance: an owner's holding of one mint.
type Account struct {
	Owner solana.PublicKey
	Mint  solana.PublicKey
}

func QuoteAccount(owner solana.PublicKey) Account {
	return Account{Owner: owner, Mint: NativeQuote}
}

func TokenAccount(owner, mint solana.PublicKey) Account {
	return Account{Owner: owner, Mint: mint}
}

func (a Account) IsQuote() bool {
	return a.Mint.IsZero()
}

func (a Account) String() string {
	if a.IsQuote() {
		return a.Owner.String() + "/quote"
	}
	return a.Owner.String() + "/" + a.Mint.String()
}

type TransferKind uint8

const (
	// KindQuote moves native quote between owners.
	KindQuote TransferKind = iota
	// KindToken moves tokens of Mint and must be signed by the source owner.
	KindToken
	// KindMintTo creates new tokens of Mint.
	KindMintTo
	// KindWrap converts the owner's native quote to the same amount of Mint.
	KindWrap
)

func (k TransferKind) String() string {
	switch k {
	case KindQuote:
		return "quote"
	case KindToken:
		return "token"
	case KindMintTo:
		return "mint_to"
	case KindWrap:
		return "wrap"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type Transfer struct {
	Kind      TransferKind
	Mint      solana.PublicKey
	From      solana.PublicKey
	To        solana.PublicKey
	Authority solana.PublicKey
	Amount    uint64
}

func NewTransferQuote(from, to solana.PublicKey, amount uint64) Transfer {
	return Transfer{Kind: KindQuote, From: from, To: to, Authority: from, Amount: amount}
}

func NewTransferTokens(mint, from, to, authority solana.PublicKey, amount uint64) Transfer {
	return Transfer{Kind: KindToken, Mint: mint, From: from, To: to, Authority: authority, Amount: amount}
}

func NewMintTo(mint, to solana.PublicKey, amount uint64) Transfer {
	return Transfer{Kind: KindMintTo, Mint: mint, To: to, Amount: amount}
}

// NewWrap converts owner's native quote into wrapped tokens of mint.
func NewWrap(mint, owner solana.PublicKey, amount uint64) Transfer {
	return Transfer{Kind: KindWrap, Mint: mint, From: owner, To: owner, Authority: owner, Amount: amount}
}

// Reader returns the committed balance of an account.
type Reader func(Account) (uint64, error)

// Apply runs transfers in order against the balances served by read and
// returns every changed balance. Nothing is written; the caller persists the
// result. Any failure invalidates the whole set.
func Apply(read Reader, transfers []Transfer) (map[Account]uint64, error) {
	changed := make(map[Account]uint64)
	get := func(a Account) (uint64, error) {
		if v, ok := changed[a]; ok {
			return v, nil
		}
		return read(a)
	}
	debit := func(a Account, amount uint64, insufficient error) error {
		bal, err := get(a)
		if err != nil {
			return err
		}
		if bal < amount {
			return fmt.Errorf("%s has %d, needs %d: %w", a, bal, amount, insufficient)
		}
		changed[a] = bal - amount
		return nil
	}
	credit := func(a Account, amount uint64) error {
		bal, err := get(a)
		if err != nil {
			return err
		}
		if bal+amount < bal {
			return fmt.Errorf("%s: %w", a, ErrOverflow)
		}
		changed[a] = bal + amount
		return nil
	}

	for i, t := range transfers {
		if t.Amount == 0 {
			continue
		}
		var err error
		switch t.Kind {
		case KindQuote:
			if err = debit(QuoteAccount(t.From), t.Amount, ErrInsufficientQuote); err == nil {
				err = credit(QuoteAccount(t.To), t.Amount)
			}
		case KindToken:
			if !t.Authority.Equals(t.From) {
				err = fmt.Errorf("%s signed for %s: %w", t.Authority, t.From, ErrUnauthorized)
				break
			}
			if err = debit(TokenAccount(t.From, t.Mint), t.Amount, ErrInsufficientTokens); err == nil {
				err = credit(TokenAccount(t.To, t.Mint), t.Amount)
			}
		case KindMintTo:
			err = credit(TokenAccount(t.To, t.Mint), t.Amount)
		case KindWrap:
			if err = debit(QuoteAccount(t.From), t.Amount, ErrInsufficientQuote); err == nil {
				err = credit(TokenAccount(t.To, t.Mint), t.Amount)
			}
		default:
			err = fmt.Errorf("unknown transfer kind %s", t.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("transfer %d (%s): %w", i, t.Kind, err)
		}
	}
	return changed, nil
}
