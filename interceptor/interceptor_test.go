package interceptor_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/palladio-labs/nft-exchange-go/interceptor"
	"github.com/palladio-labs/nft-exchange-go/mock"
)

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	testSeller   = common.HexToAddress("0x0000000000000000000000000000000000001111")
	testPoolAddr = common.HexToAddress("0x0000000000000000000000000000000000007777")
	testCollAddr = common.HexToAddress("0x0000000000000000000000000000000000004444")
)

func TestManagerWhitelist(t *testing.T) {
	m := interceptor.NewManager(testOwner)
	addr := common.HexToAddress("0x0000000000000000000000000000000000000601")
	r := interceptor.NewRedeemNFT(nil)

	require.ErrorIs(t, m.AddInterceptor(testSeller, addr, r), interceptor.ErrNotOwner)
	require.ErrorIs(t, m.AddInterceptor(testOwner, common.Address{}, r), interceptor.ErrNullAddress)
	require.NoError(t, m.AddInterceptor(testOwner, addr, r))
	require.ErrorIs(t, m.AddInterceptor(testOwner, addr, r), interceptor.ErrAlreadyWhitelisted)
	require.True(t, m.IsInterceptorWhitelisted(addr))

	got, ok := m.Interceptor(addr)
	require.True(t, ok)
	require.Equal(t, r, got)

	require.ErrorIs(t, m.RemoveInterceptor(testSeller, addr), interceptor.ErrNotOwner)
	require.NoError(t, m.RemoveInterceptor(testOwner, addr))
	require.ErrorIs(t, m.RemoveInterceptor(testOwner, addr), interceptor.ErrNotWhitelisted)
}

func TestRedeemPassThrough(t *testing.T) {
	ctx := context.Background()
	coll := mock.NewERC721()
	coll.Mint(testSeller, big.NewInt(7))

	r := interceptor.NewRedeemNFT(mock.NewLendPool(testPoolAddr, mock.NewERC20()))
	require.NoError(t, r.CheckTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(100), nil))
	require.NoError(t, r.BeforeTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(100), nil))
}

func TestRedeemCollateralized(t *testing.T) {
	ctx := context.Background()
	coll := mock.NewERC721()
	coll.Mint(testSeller, big.NewInt(7))
	currency := mock.NewERC20()
	pool := mock.NewLendPool(testPoolAddr, currency)
	r := interceptor.NewRedeemNFT(pool)

	// Seller borrows against the NFT; the pool takes custody.
	require.NoError(t, pool.Borrow(ctx, testSeller, testCollAddr, coll, big.NewInt(7), big.NewInt(60), big.NewInt(5)))
	poolOwner, err := coll.OwnerOf(big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, testPoolAddr, poolOwner)

	// Proceeds below debt plus fine cannot redeem.
	require.ErrorIs(t, r.BeforeTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(64), nil), interceptor.ErrInsufficientRepay)

	// Only the borrower may redeem through a sale.
	stranger := common.HexToAddress("0x0000000000000000000000000000000000009999")
	require.ErrorIs(t, r.BeforeTransfer(ctx, testCollAddr, coll, stranger, big.NewInt(7), big.NewInt(100), nil), interceptor.ErrNotBNFTOwner)

	// With enough proceeds the debt is settled and the NFT comes back.
	currency.Mint(testSeller, big.NewInt(100))
	require.NoError(t, r.BeforeTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(100), nil))

	owner, err := coll.OwnerOf(big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, testSeller, owner)
	require.Zero(t, currency.BalanceOf(testSeller).Cmp(big.NewInt(35)))
	require.Zero(t, currency.BalanceOf(testPoolAddr).Cmp(big.NewInt(65)))
}

func TestCheckTransferHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	coll := mock.NewERC721()
	coll.Mint(testSeller, big.NewInt(7))
	currency := mock.NewERC20()
	currency.Mint(testSeller, big.NewInt(100))
	pool := mock.NewLendPool(testPoolAddr, currency)
	r := interceptor.NewRedeemNFT(pool)

	require.NoError(t, pool.Borrow(ctx, testSeller, testCollAddr, coll, big.NewInt(7), big.NewInt(60), big.NewInt(5)))

	require.ErrorIs(t, r.CheckTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(64), nil), interceptor.ErrInsufficientRepay)
	require.NoError(t, r.CheckTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(100), nil))

	// The gate alone repays nothing and moves nothing.
	owner, err := coll.OwnerOf(big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, testPoolAddr, owner)
	require.Zero(t, currency.BalanceOf(testSeller).Cmp(big.NewInt(100)))
	_, bound := pool.Binding(testCollAddr, big.NewInt(7))
	require.True(t, bound)
}

func TestRedeemNoBinding(t *testing.T) {
	ctx := context.Background()
	coll := mock.NewERC721()
	coll.Mint(testPoolAddr, big.NewInt(7))

	r := interceptor.NewRedeemNFT(mock.NewLendPool(testPoolAddr, mock.NewERC20()))
	require.ErrorIs(t, r.BeforeTransfer(ctx, testCollAddr, coll, testSeller, big.NewInt(7), big.NewInt(100), nil), interceptor.ErrNoBNFT)
}
